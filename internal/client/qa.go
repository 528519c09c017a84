package client

import "context"

// DocumentQA asks a question about a previously uploaded document.
// An empty documentID is sent as DefaultDocumentID.
func (c *Client) DocumentQA(ctx context.Context, question, documentID string) Result[DocumentAnswer] {
	if blank(question) {
		return rejected[DocumentAnswer](CapabilityDocumentQA, "question")
	}
	if documentID == "" {
		documentID = DefaultDocumentID
	}

	raw, err := c.postMultipart(ctx, CapabilityDocumentQA, []formField{
		{"question", question},
		{"document_id", documentID},
	}, nil)
	if err != nil {
		c.logFailure(ctx, CapabilityDocumentQA, err)
		return failure[DocumentAnswer](CapabilityDocumentQA, err)
	}

	return decodeResult[DocumentAnswer](CapabilityDocumentQA, raw)
}

// VisualQA asks a question about an image
func (c *Client) VisualQA(ctx context.Context, question string, image Attachment) Result[VisualAnswer] {
	if blank(question) {
		return rejected[VisualAnswer](CapabilityVisualQA, "question")
	}
	if image.missing() {
		return rejected[VisualAnswer](CapabilityVisualQA, "image")
	}

	raw, err := c.postMultipart(ctx, CapabilityVisualQA, []formField{
		{"question", question},
	}, &filePart{field: "image", attachment: image})
	if err != nil {
		c.logFailure(ctx, CapabilityVisualQA, err)
		return failure[VisualAnswer](CapabilityVisualQA, err)
	}

	return decodeResult[VisualAnswer](CapabilityVisualQA, raw)
}
