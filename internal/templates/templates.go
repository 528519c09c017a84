// Package templates renders the UI pages and the HTMX fragments returned by the /ui-api endpoints.
//
// Markup lives in embedded html/template files; each exported function wraps one of them as a templ.Component
// so handlers render pages and fragments the same way.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"github.com/a-h/templ"

	"github.com/eduvision-ai/eduvision/internal/auth"
)

//go:embed html/*.html
var htmlFiles embed.FS

//go:embed static
var staticFiles embed.FS

var funcs = template.FuncMap{
	"highlightJSON": HighlightJSON,
	"upper":         strings.ToUpper,
}

var pages = template.Must(template.New("").Funcs(funcs).ParseFS(htmlFiles, "html/*.html"))

// Static returns the embedded stylesheet and scripts (served under /static/)
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func render(name string, data any) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}

// Page is the data shared by every full page
type Page struct {
	Title       string
	Environment string
	User        *User
}

// User is the signed-in user shown in the navigation bar
type User struct {
	Email string
	Role  auth.Role
}

// IsStaff reports whether the user can open the dashboards
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == auth.RoleAdmin || u.Role == auth.RoleTeacher)
}

// SignInPage renders the sign-in form with the demo credential shortcuts
func SignInPage(environment string) templ.Component {
	return render("signin", struct {
		Page
		Credentials []auth.DemoCredential
	}{
		Page:        Page{Title: "Sign In", Environment: environment},
		Credentials: auth.DemoCredentials(),
	})
}

// AccessDeniedPage renders the page users are sent to when their role does not permit a route
func AccessDeniedPage(page Page, message string) templ.Component {
	return render("access_denied", struct {
		Page
		Message string
	}{Page: page, Message: message})
}

// ErrorAlert renders an error message inside the fragment target
func ErrorAlert(message string) templ.Component {
	return render("error_alert", message)
}

// RawJSON renders a JSON document with syntax highlighting
func RawJSON(title, source string) templ.Component {
	return render("raw_json", struct {
		Title  string
		Source string
	}{Title: title, Source: source})
}
