package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// HealthCheck reports the backend status.
//
// Unlike the processing capabilities, failures are returned to the caller as a *ClientError.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	raw, clientErr := c.get(ctx, CapabilityHealth, "")
	if clientErr != nil {
		c.logFailure(ctx, CapabilityHealth, clientErr)
		return nil, clientErr
	}

	var health HealthResponse
	if err := json.Unmarshal(raw, &health); err != nil {
		return nil, NewClientParseError(err, "decoding health response")
	}
	health.Raw = raw

	return &health, nil
}

// GetAnalytics returns platform usage analytics. Failures are returned to the caller.
func (c *Client) GetAnalytics(ctx context.Context) (*Analytics, error) {
	raw, clientErr := c.get(ctx, CapabilityAnalytics, "")
	if clientErr != nil {
		c.logFailure(ctx, CapabilityAnalytics, clientErr)
		return nil, clientErr
	}

	var analytics Analytics
	if err := json.Unmarshal(raw, &analytics); err != nil {
		return nil, NewClientParseError(err, "decoding analytics response")
	}
	analytics.Raw = raw

	return &analytics, nil
}

// GetConversations returns the most recent conversations (newest first).
// limit <= 0 is sent as DefaultConversationLimit. Failures are returned to the caller.
func (c *Client) GetConversations(ctx context.Context, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	raw, clientErr := c.get(ctx, CapabilityConversations, query.Encode())
	if clientErr != nil {
		c.logFailure(ctx, CapabilityConversations, clientErr)
		return nil, clientErr
	}

	var conversations []Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		return nil, NewClientParseError(err, "decoding conversations response")
	}

	return conversations, nil
}
