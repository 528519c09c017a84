package templates

import (
	"context"
	"html/template"
	"strings"

	"github.com/a-h/templ"

	"github.com/eduvision-ai/eduvision/internal/client"
)

// Tab is one of the forms on the features page
type Tab struct {
	ID         string
	Label      string
	Capability client.Capability
}

// Tabs in display order. The first is active when no tab is requested.
var Tabs = []Tab{
	{ID: "document-qa", Label: "Document Q&A", Capability: client.CapabilityDocumentQA},
	{ID: "visual-qa", Label: "Visual Analysis", Capability: client.CapabilityVisualQA},
	{ID: "summarization", Label: "Summarization", Capability: client.CapabilitySummarize},
	{ID: "text-to-speech", Label: "Text-to-Speech", Capability: client.CapabilityTextToSpeech},
	{ID: "upload", Label: "Upload Files", Capability: client.CapabilityUpload},
}

// ActiveTab returns the tab with the given id, or the first tab
func ActiveTab(id string) Tab {
	for _, tab := range Tabs {
		if tab.ID == id {
			return tab
		}
	}
	return Tabs[0]
}

// Summary length bounds offered by the summarization form
const (
	MinSummaryLength = 50
	MaxSummaryLength = 300
)

// FeaturesData is the state of the features page
type FeaturesData struct {
	Page
	Active     Tab
	DocumentID string
	Results    []template.HTML // stored results, rendered in tab order
}

// FeaturesPage renders the features page with the active tab's form and the session's stored results
func FeaturesPage(data FeaturesData) templ.Component {
	return render("features", struct {
		FeaturesData
		Tabs             []Tab
		Voices           []string
		MinSummaryLength int
		MaxSummaryLength int
		DefaultMaxLength int
		UploadAccept     string
	}{
		FeaturesData:     data,
		Tabs:             Tabs,
		Voices:           client.Voices,
		MinSummaryLength: MinSummaryLength,
		MaxSummaryLength: MaxSummaryLength,
		DefaultMaxLength: client.DefaultSummaryMaxLength,
		UploadAccept:     strings.Join(client.SupportedUploadExtensions, ","),
	})
}

// ToHTML renders a component so it can be embedded in a page
func ToHTML(ctx context.Context, c templ.Component) (template.HTML, error) {
	return templ.ToGoHTML(ctx, c)
}

// The result fragments render the error alert on failure and the raw response when the primary field is absent.

func DocumentQAResult(res client.Result[client.DocumentAnswer]) templ.Component {
	if !res.OK() {
		return ErrorAlert(res.Error)
	}
	if res.Data.Answer == "" {
		return RawJSON("Answer", res.IndentedRaw())
	}
	return render("document_qa_result", res.Data)
}

func VisualQAResult(res client.Result[client.VisualAnswer]) templ.Component {
	if !res.OK() {
		return ErrorAlert(res.Error)
	}
	if res.Data.Answer == "" {
		return RawJSON("Visual Analysis Result", res.IndentedRaw())
	}
	return render("visual_qa_result", res.Data)
}

func SummaryResult(res client.Result[client.Summary]) templ.Component {
	if !res.OK() {
		return ErrorAlert(res.Error)
	}
	if res.Data.Summary == "" {
		return RawJSON("Summary", res.IndentedRaw())
	}
	return render("summary_result", res.Data)
}

// SpeechResult renders the text-to-speech outcome. audioURL is the resolved URL of remote audio.
func SpeechResult(res client.Result[client.Speech], audioURL string) templ.Component {
	if !res.OK() {
		return ErrorAlert(res.Error)
	}
	if res.Data.Message == "" {
		return RawJSON("Text-to-Speech Result", res.IndentedRaw())
	}
	return render("speech_result", struct {
		*client.Speech
		Source   client.AudioSource
		AudioURL string
		Remote   bool
		Local    bool
	}{
		Speech:   res.Data,
		Source:   res.Data.Audio(),
		AudioURL: audioURL,
		Remote:   res.Data.Audio().Kind == client.AudioRemote,
		Local:    res.Data.Audio().Kind == client.AudioSpeech,
	})
}

func UploadResult(res client.Result[client.UploadReceipt]) templ.Component {
	if !res.OK() {
		return ErrorAlert(res.Error)
	}
	if res.Data.Message == "" {
		return RawJSON("Upload Result", res.IndentedRaw())
	}
	return render("upload_result", res.Data)
}
