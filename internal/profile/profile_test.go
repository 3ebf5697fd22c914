package profile

import "testing"

func TestValidateFillsDefaults(t *testing.T) {
	p := &Profile{Secret: "test-secret"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"mode", "dev", p.Mode},
		{"addr", "0.0.0.0", p.Addr},
		{"driver", "sqlite", p.Driver},
		{"data", ".", p.Data},
		{"dsn", "./donna.db", p.DSN},
		{"version", "0.1.0", p.Version},
	}
	for _, test := range tests {
		if test.expected != test.actual {
			t.Errorf("%s: expected %q, got %q", test.name, test.expected, test.actual)
		}
	}
	if p.Port != 8081 {
		t.Errorf("port: expected 8081, got %d", p.Port)
	}
}

func TestValidateCoercesUnknownMode(t *testing.T) {
	p := &Profile{Mode: "demo", Secret: "test-secret"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if p.Mode != "dev" {
		t.Errorf("mode: expected %q, got %q", "dev", p.Mode)
	}
}

func TestValidateSynthesizesSqliteDSNFromData(t *testing.T) {
	p := &Profile{Data: "/var/opt/donna", Secret: "test-secret"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if p.DSN != "/var/opt/donna/donna.db" {
		t.Errorf("dsn: expected %q, got %q", "/var/opt/donna/donna.db", p.DSN)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
	}{
		{"unsupported driver", &Profile{Driver: "mysql", Secret: "test-secret"}},
		{"postgres without dsn", &Profile{Driver: "postgres", Secret: "test-secret"}},
		{"missing secret", &Profile{}},
	}
	for _, test := range tests {
		if err := test.profile.Validate(); err == nil {
			t.Errorf("%s: expected error, got nil", test.name)
		}
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearProfileEnv(t)

	p := &Profile{}
	p.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"openai base url", "https://api.openai.com/v1", p.OpenAIBaseURL},
		{"strong model", "gpt-4o", p.StrongModel},
		{"weak model", "gpt-3.5-turbo", p.WeakModel},
		{"classifier model", "gpt-4o-mini", p.ClassifierModel},
		{"image model", "dall-e-3", p.ImageModel},
		{"search model", "gpt-4o-search-preview", p.SearchModel},
		{"default timezone", "Asia/Dhaka", p.DefaultTimezone},
		{"google redirect uri", "http://localhost:5173/callback", p.GoogleRedirectURI},
	}
	for _, test := range tests {
		if test.expected != test.actual {
			t.Errorf("%s: expected %q, got %q", test.name, test.expected, test.actual)
		}
	}
	if p.Secret != "" {
		t.Errorf("secret: expected empty, got %q", p.Secret)
	}
	if p.IsAIEnabled() {
		t.Error("expected AI to be disabled without an API key")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearProfileEnv(t)
	t.Setenv("DONNA_SECRET", "env-secret")
	t.Setenv("DONNA_OPENAI_API_KEY", "sk-test")
	t.Setenv("DONNA_STRONG_MODEL", "gpt-5")
	t.Setenv("DONNA_DEFAULT_TIMEZONE", "America/New_York")

	p := &Profile{}
	p.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"secret", "env-secret", p.Secret},
		{"openai api key", "sk-test", p.OpenAIAPIKey},
		{"strong model", "gpt-5", p.StrongModel},
		{"default timezone", "America/New_York", p.DefaultTimezone},
	}
	for _, test := range tests {
		if test.expected != test.actual {
			t.Errorf("%s: expected %q, got %q", test.name, test.expected, test.actual)
		}
	}
	if !p.IsAIEnabled() {
		t.Error("expected AI to be enabled with an API key")
	}
}

func clearProfileEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DONNA_SECRET",
		"DONNA_OPENAI_API_KEY",
		"DONNA_OPENAI_BASE_URL",
		"DONNA_STRONG_MODEL",
		"DONNA_WEAK_MODEL",
		"DONNA_CLASSIFIER_MODEL",
		"DONNA_IMAGE_MODEL",
		"DONNA_SEARCH_MODEL",
		"DONNA_DEFAULT_TIMEZONE",
		"DONNA_GOOGLE_CLIENT_ID",
		"DONNA_GOOGLE_CLIENT_SECRET",
		"DONNA_GOOGLE_REDIRECT_URI",
	} {
		t.Setenv(key, "")
	}
}
