package client

import (
	"context"
	"path/filepath"
	"strings"
)

// SupportedUploadExtensions are the document types the backend extracts text from
var SupportedUploadExtensions = []string{".pdf", ".docx", ".txt", ".md"}

// SupportedUpload reports whether the backend can extract text from the named file
func SupportedUpload(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedUploadExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// UploadFile uploads a document. The receipt's DocumentID can be used with DocumentQA.
func (c *Client) UploadFile(ctx context.Context, file Attachment) Result[UploadReceipt] {
	if file.missing() {
		return rejected[UploadReceipt](CapabilityUpload, "file")
	}

	raw, err := c.postMultipart(ctx, CapabilityUpload, nil, &filePart{field: "file", attachment: file})
	if err != nil {
		c.logFailure(ctx, CapabilityUpload, err)
		return failure[UploadReceipt](CapabilityUpload, err)
	}

	return decodeResult[UploadReceipt](CapabilityUpload, raw)
}
