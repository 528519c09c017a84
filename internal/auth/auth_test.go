package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eduvision-ai/eduvision/internal/config"
	"github.com/eduvision-ai/eduvision/internal/results"
	"github.com/eduvision-ai/eduvision/internal/session"
)

const testSecret = "test-secret-that-is-long-enough-for-prod"

func newTestService(t *testing.T) (*AuthService, *results.Store) {
	t.Helper()
	store := results.NewStore(results.LatestRequest)
	a, err := NewAuthService(session.NewManager(testSecret, time.Hour, "dev"), store)
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}
	return a, store
}

func TestAuthenticate(t *testing.T) {
	a, _ := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		wantRole Role
		wantErr  error
	}{
		{"admin", "admin@eduvision.ai", "admin123", RoleAdmin, nil},
		{"teacher", "teacher@eduvision.ai", "teacher123", RoleTeacher, nil},
		{"student", "student@eduvision.ai", "student123", RoleStudent, nil},
		{"wrong password", "admin@eduvision.ai", "student123", "", ErrInvalidCredentials},
		{"unknown email", "someone@eduvision.ai", "admin123", "", ErrInvalidCredentials},
		{"email is case sensitive", "Admin@eduvision.ai", "admin123", "", ErrInvalidCredentials},
		{"empty", "", "", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := a.Authenticate(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if role != tt.wantRole {
				t.Errorf("got role %q, want %q", role, tt.wantRole)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	a, _ := newTestService(t)

	t.Run("valid credentials set a session cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s, err := a.SignIn(rr, "admin@eduvision.ai", "admin123")
		if err != nil {
			t.Fatalf("SignIn() error = %v", err)
		}
		if s.Role != string(RoleAdmin) {
			t.Errorf("got role %q, want admin", s.Role)
		}

		cookies := rr.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Name != config.SessionCookieName {
			t.Fatalf("got cookies %v, want a session cookie", cookies)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookies[0])
		loaded, err := a.CurrentSession(req)
		if err != nil {
			t.Fatalf("CurrentSession() error = %v", err)
		}
		if loaded.ID != s.ID {
			t.Errorf("got session %v, want %v", loaded.ID, s.ID)
		}
	})

	t.Run("invalid credentials set no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		_, err := a.SignIn(rr, "admin@eduvision.ai", "wrong")
		if err == nil || err.Error() != "Invalid email or password" {
			t.Fatalf("SignIn() error = %v, want Invalid email or password", err)
		}
		if cookies := rr.Result().Cookies(); len(cookies) != 0 {
			t.Errorf("got cookies %v, want none", cookies)
		}
	})
}

func TestSignOutForgetsResults(t *testing.T) {
	a, store := newTestService(t)

	s, err := a.SignIn(httptest.NewRecorder(), "student@eduvision.ai", "student123")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	store.CompleteUpload(store.Begin(s.ID, "upload"), "uploaded", "3")
	if store.DocumentID(s.ID) != "3" {
		t.Fatal("document id not stored")
	}

	rr := httptest.NewRecorder()
	a.SignOut(rr, s)

	if store.DocumentID(s.ID) != "" {
		t.Error("results survived sign-out")
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Errorf("got cookies %v, want the session cookie cleared", cookies)
	}
}

func TestRoleLabelAndLanding(t *testing.T) {
	tests := []struct {
		role        Role
		wantLabel   string
		wantLanding string
	}{
		{RoleAdmin, "Admin", "/admin/dashboard"},
		{RoleTeacher, "Teacher", "/teacher/dashboard"},
		{RoleStudent, "Student", "/features"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Label(); got != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", got, tt.wantLabel)
			}
			if got := tt.role.LandingRoute(); got != tt.wantLanding {
				t.Errorf("LandingRoute() = %q, want %q", got, tt.wantLanding)
			}
		})
	}
}

func TestDemoCredentialsAreCopied(t *testing.T) {
	creds := DemoCredentials()
	creds[0].Password = "changed"
	if DemoCredentials()[0].Password == "changed" {
		t.Error("DemoCredentials exposes the package slice")
	}
}
