package templates

import (
	"github.com/a-h/templ"

	"github.com/eduvision-ai/eduvision/internal/client"
)

// SmokeTest is a canned request the dashboard can send to check a capability end to end
type SmokeTest struct {
	Capability client.Capability
	Label      string
}

// DashboardData is the state of the admin and teacher dashboards.
// Informational calls that failed leave their value nil and set the matching error message.
type DashboardData struct {
	Page
	Heading            string
	APIBaseURL         string
	Health             *client.HealthResponse
	HealthError        string
	Analytics          *client.Analytics
	AnalyticsError     string
	Conversations      []client.Conversation
	ConversationsError string
	SmokeTests         []SmokeTest
}

// Connected reports whether the backend health check succeeded
func (d DashboardData) Connected() bool {
	return d.Health != nil
}

// DashboardPage renders the system status, analytics, recent conversations and the smoke test buttons
func DashboardPage(data DashboardData) templ.Component {
	return render("dashboard", data)
}

// SmokeResult renders the outcome of a dashboard smoke test as JSON
func SmokeResult(label, source string) templ.Component {
	return RawJSON(label, source)
}
