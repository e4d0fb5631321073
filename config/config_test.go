package config

import (
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	if c.Server.Port != 3000 {
		t.Fatalf("expected port 3000, got %d", c.Server.Port)
	}
	if c.Session.CookieName != "chat_session" || c.Session.TTL() != 24*time.Hour {
		t.Fatalf("unexpected session defaults: %+v", c.Session)
	}
	if c.Storage.Driver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", c.Storage.Driver)
	}
	if c.Provider.Model != "gemini-1.5-flash" || c.Provider.Timeout() != time.Minute {
		t.Fatalf("unexpected provider defaults: %+v", c.Provider)
	}
	if c.Client.Greeting == "" {
		t.Fatalf("expected default greeting")
	}
}

func TestApplyDefaultsModelPerProvider(t *testing.T) {
	testCases := []struct {
		name string
		want string
	}{
		{name: "openai", want: "gpt-4o-mini"},
		{name: "anthropic", want: "claude-3-5-haiku-latest"},
		{name: "gemini", want: "gemini-1.5-flash"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			c := AppConfig{Provider: ProviderConfig{Name: testCase.name}}
			applyDefaults(&c)
			if c.Provider.Model != testCase.want {
				t.Fatalf("expected %q, got %q", testCase.want, c.Provider.Model)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("PORT", "8081")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")
	t.Setenv("PROVIDER_NAME", "")

	c := AppConfig{Session: SessionConfig{Secret: "from-yaml"}, Provider: ProviderConfig{Name: "openai"}}
	applyEnv(&c)

	if c.Session.Secret != "from-env" {
		t.Fatalf("expected env secret, got %q", c.Session.Secret)
	}
	if c.Server.Port != 8081 {
		t.Fatalf("expected port 8081, got %d", c.Server.Port)
	}
	if c.Events.Brokers != "localhost:9092" {
		t.Fatalf("expected brokers from env, got %q", c.Events.Brokers)
	}
	if c.Provider.Name != "openai" {
		t.Fatalf("empty env must not override, got %q", c.Provider.Name)
	}
}
