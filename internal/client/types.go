package client

import "encoding/json"

const (
	DefaultDocumentID        = "1"
	DefaultSummaryMaxLength  = 150
	DefaultVoice             = "default"
	DefaultConversationLimit = 10
)

// DocumentAnswer is the response from /document-qa
type DocumentAnswer struct {
	Answer        string     `json:"answer"`
	DocumentTitle string     `json:"document_title,omitempty"`
	Confidence    FlexString `json:"confidence,omitempty"`
}

// VisualAnswer is the response from /visual-qa
type VisualAnswer struct {
	Answer        string     `json:"answer"`
	ImageAnalysis string     `json:"image_analysis,omitempty"`
	Confidence    FlexString `json:"confidence,omitempty"`
}

// Summary is the response from /summarize
type Summary struct {
	Summary          string     `json:"summary"`
	OriginalLength   Count      `json:"original_length,omitempty"`
	SummaryLength    Count      `json:"summary_length,omitempty"`
	CompressionRatio FlexString `json:"compression_ratio,omitempty"`
}

// Speech is the response from /text-to-speech
type Speech struct {
	Message           string     `json:"message"`
	AudioURL          string     `json:"audio_url,omitempty"`
	WordCount         Count      `json:"word_count,omitempty"`
	EstimatedDuration FlexString `json:"estimated_duration,omitempty"`
	VoiceUsed         string     `json:"voice_used,omitempty"`
}

// Audio classifies the audio_url of the response
func (s Speech) Audio() AudioSource {
	return ParseAudioURL(s.AudioURL)
}

// UploadReceipt is the response from /upload
type UploadReceipt struct {
	Message              string     `json:"message"`
	DocumentID           FlexString `json:"document_id,omitempty"`
	TotalCharacters      Count      `json:"total_characters,omitempty"`
	ExtractedTextPreview string     `json:"extracted_text_preview,omitempty"`
}

// HealthResponse is the response from /health. Only the fields reported by the current backend are typed;
// Raw holds the full body.
type HealthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service,omitempty"`
	Database  string          `json:"database,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Healthy reports whether the backend described itself as healthy
func (h *HealthResponse) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// Analytics is the response from /analytics
type Analytics struct {
	TotalUsers         Count            `json:"total_users"`
	DocumentsProcessed Count            `json:"documents_processed"`
	QuestionsAnswered  Count            `json:"questions_answered"`
	ServiceUsage       map[string]Count `json:"service_usage,omitempty"`
	DatabaseStatus     string           `json:"database_status,omitempty"`
	LastUpdated        string           `json:"last_updated,omitempty"`
	Raw                json.RawMessage  `json:"-"`
}

// Conversation is an entry of the /conversations history
type Conversation struct {
	ID          Count  `json:"id"`
	ServiceType string `json:"service_type"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Timestamp   string `json:"timestamp"`
}
