package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/eduvision-ai/eduvision/internal/metrics"
)

// Capability identifies a backend operation. The value is also the operation's path.
type Capability string

const (
	CapabilityHealth        Capability = "health"
	CapabilityDocumentQA    Capability = "document-qa"
	CapabilityVisualQA      Capability = "visual-qa"
	CapabilitySummarize     Capability = "summarize"
	CapabilityTextToSpeech  Capability = "text-to-speech"
	CapabilityUpload        Capability = "upload"
	CapabilityAnalytics     Capability = "analytics"
	CapabilityConversations Capability = "conversations"
)

// ProcessingCapabilities are the capabilities that report failures through a Result
var ProcessingCapabilities = []Capability{
	CapabilityDocumentQA,
	CapabilityVisualQA,
	CapabilitySummarize,
	CapabilityTextToSpeech,
	CapabilityUpload,
}

var failureMessages = map[Capability]string{
	CapabilityDocumentQA:   "Failed to process question",
	CapabilityVisualQA:     "Failed to analyze image",
	CapabilitySummarize:    "Failed to generate summary",
	CapabilityTextToSpeech: "Failed to generate speech",
	CapabilityUpload:       "Failed to upload file",
}

func (c Capability) Path() string {
	return "/" + string(c)
}

// FailureMessage is the static message reported when the capability fails
func (c Capability) FailureMessage() string {
	if msg, ok := failureMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("Failed to call %s", c)
}

// ParseCapability returns the processing capability with the given name
func ParseCapability(name string) (Capability, bool) {
	for _, c := range ProcessingCapabilities {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Result is the outcome of a processing capability: either Data (with the Raw body it was decoded from) or Error.
//
// Result is never returned alongside a Go error. Error holds the capability's static failure message and
// Cause holds the detail for logging.
type Result[T any] struct {
	Capability Capability
	Data       *T
	Raw        json.RawMessage
	Error      string
	Cause      *ClientError
}

func (r Result[T]) OK() bool {
	return r.Error == "" && r.Data != nil
}

// MarshalJSON renders the backend's object on success and {"error": "..."} on failure
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		msg := r.Error
		if msg == "" {
			msg = r.Capability.FailureMessage()
		}
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: msg})
	}
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(r.Data)
}

// IndentedRaw returns the backend response (or the error envelope) formatted for display
func (r Result[T]) IndentedRaw() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return ""
	}
	return indentJSON(data)
}

func indentJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

func failure[T any](capability Capability, cause *ClientError) Result[T] {
	return Result[T]{
		Capability: capability,
		Error:      capability.FailureMessage(),
		Cause:      cause,
	}
}

// decodeResult decodes a validated response body into the capability's result type
func decodeResult[T any](capability Capability, raw []byte) Result[T] {
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return failure[T](capability, NewClientParseError(err, fmt.Sprintf("decoding %s response", capability)))
	}
	return Result[T]{
		Capability: capability,
		Data:       &data,
		Raw:        json.RawMessage(raw),
	}
}

// rejected is returned when a required input is missing; no request is sent
func rejected[T any](capability Capability, field string) Result[T] {
	metrics.ClientRequests.WithLabelValues(string(capability), metrics.OutcomeValidationError).Inc()
	return failure[T](capability, NewClientValidationError(field))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FlexString accepts a JSON string or a JSON number/bool and keeps its text.
// The backend reports values such as confidence and durations either way.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Count is a whole number. Integral JSON numbers written with a fraction or exponent (150.0, 1.5e2)
// are accepted, as the schema "integer" type accepts them.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("count %s is not a number", data)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("count %s is not a whole number", data)
	}
	*c = Count(f)
	return nil
}
