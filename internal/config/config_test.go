package config

import "testing"

func TestTimezone(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{name: "default when unset", env: "", want: "Europe/Paris"},
		{name: "env override", env: "America/New_York", want: "America/New_York"},
		{name: "fallback on unknown zone", env: "Mars/Olympus", want: "Europe/Paris"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ZEPHYR_TIMEZONE", tt.env)
			if got := Timezone().String(); got != tt.want {
				t.Errorf("Timezone() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWebPort(t *testing.T) {
	t.Setenv("ZEPHYR_WEB_PORT", "")
	if got := WebPort(); got != DefaultWebPort {
		t.Errorf("WebPort() = %q, want %q", got, DefaultWebPort)
	}

	t.Setenv("ZEPHYR_WEB_PORT", "9090")
	if got := WebPort(); got != "9090" {
		t.Errorf("WebPort() = %q, want 9090", got)
	}
}

func TestIdentity(t *testing.T) {
	t.Setenv("ZEPHYR_IDENTITY", "")
	if got := Identity("local"); got != "local" {
		t.Errorf("Identity() = %q, want local", got)
	}

	t.Setenv("ZEPHYR_IDENTITY", "alice")
	if got := Identity("local"); got != "alice" {
		t.Errorf("Identity() = %q, want alice", got)
	}
}
