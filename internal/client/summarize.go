package client

import (
	"context"
	"strconv"
)

// Summarize requests a summary of text no longer than maxLength characters.
// maxLength <= 0 is sent as DefaultSummaryMaxLength.
func (c *Client) Summarize(ctx context.Context, text string, maxLength int) Result[Summary] {
	if blank(text) {
		return rejected[Summary](CapabilitySummarize, "text")
	}
	if maxLength <= 0 {
		maxLength = DefaultSummaryMaxLength
	}

	raw, err := c.postMultipart(ctx, CapabilitySummarize, []formField{
		{"text", text},
		{"max_length", strconv.Itoa(maxLength)},
	}, nil)
	if err != nil {
		c.logFailure(ctx, CapabilitySummarize, err)
		return failure[Summary](CapabilitySummarize, err)
	}

	return decodeResult[Summary](CapabilitySummarize, raw)
}
