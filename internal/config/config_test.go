package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.APIBaseURL != DevelopmentAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, DevelopmentAPIBaseURL)
	}
	if cfg.ClientTimeout != 30*time.Second {
		t.Errorf("ClientTimeout = %v, want 30s", cfg.ClientTimeout)
	}
	if cfg.SessionSecret == "" {
		t.Error("expected a development session secret")
	}
	if cfg.ResultPolicy != "latest-request" {
		t.Errorf("ResultPolicy = %q", cfg.ResultPolicy)
	}
}

func TestBaseURLForEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		want        string
	}{
		{"prod", ProductionAPIBaseURL},
		{"staging", DevelopmentAPIBaseURL},
		{"dev", DevelopmentAPIBaseURL},
		{"", DevelopmentAPIBaseURL},
	}

	for _, tt := range tests {
		if got := BaseURLForEnvironment(tt.environment); got != tt.want {
			t.Errorf("BaseURLForEnvironment(%q) = %q, want %q", tt.environment, got, tt.want)
		}
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("SESSION_SECRET", strings.Repeat("s", MinSessionSecretLength))
	t.Setenv("API_BASE_URL", "https://api.eduvision.example/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com | https://b.example.com")
	t.Setenv("RESULT_POLICY", "last-arrival")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}

	if cfg.APIBaseURL != "https://api.eduvision.example" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("AllowedOrigins = %q", cfg.AllowedOrigins)
	}
	if cfg.ResultPolicy != "last-arrival" {
		t.Errorf("ResultPolicy = %q", cfg.ResultPolicy)
	}
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown environment",
			env:     map[string]string{"ENVIRONMENT": "qa"},
			wantErr: "invalid environment",
		},
		{
			name:    "prod without a session secret",
			env:     map[string]string{"ENVIRONMENT": "prod"},
			wantErr: "SESSION_SECRET is required",
		},
		{
			name:    "prod with a short session secret",
			env:     map[string]string{"ENVIRONMENT": "prod", "SESSION_SECRET": "short"},
			wantErr: "at least",
		},
		{
			name:    "invalid base url",
			env:     map[string]string{"ENVIRONMENT": "dev", "API_BASE_URL": "localhost"},
			wantErr: "API_BASE_URL",
		},
		{
			name:    "unsupported scheme",
			env:     map[string]string{"ENVIRONMENT": "dev", "API_BASE_URL": "ftp://files.example.com"},
			wantErr: "http or https",
		},
		{
			name:    "unknown result policy",
			env:     map[string]string{"ENVIRONMENT": "dev", "RESULT_POLICY": "random"},
			wantErr: "RESULT_POLICY",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"ENVIRONMENT": "dev", "PORT": "70000"},
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewConfig() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
