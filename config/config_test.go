package config

import "testing"

func TestResolveHeadless(t *testing.T) {
	tests := []struct {
		name     string
		override string
		display  string
		want     bool
	}{
		{"no override, no display", "", "", true},
		{"no override, display present", "", ":0", false},
		{"explicit true wins over display", "true", ":0", true},
		{"explicit 1 wins over display", "1", ":0", true},
		{"explicit yes wins over display", "yes", ":0", true},
		{"explicit false wins over missing display", "false", "", false},
		{"case insensitive override", "TRUE", ":0", true},
		{"unrecognized override means visible", "maybe", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveHeadless(tt.override, tt.display); got != tt.want {
				t.Errorf("ResolveHeadless(%q, %q) = %v, want %v",
					tt.override, tt.display, got, tt.want)
			}
		})
	}
}

func TestLLMConfigConfigured(t *testing.T) {
	if (LLMConfig{}).Configured() {
		t.Error("empty LLM config should not be configured")
	}
	if !(LLMConfig{APIKey: "sk-test"}).Configured() {
		t.Error("LLM config with key should be configured")
	}
}

func TestMailConfigConfigured(t *testing.T) {
	full := MailConfig{Host: "smtp.example.com", User: "u@example.com", Pass: "p"}
	if !full.Configured() {
		t.Error("complete mail config should be configured")
	}

	partials := []MailConfig{
		{User: "u@example.com", Pass: "p"},
		{Host: "smtp.example.com", Pass: "p"},
		{Host: "smtp.example.com", User: "u@example.com"},
		{},
	}
	for i, cfg := range partials {
		if cfg.Configured() {
			t.Errorf("partial mail config %d should not be configured", i)
		}
	}
}
