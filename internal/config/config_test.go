package config

import (
	"strings"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	t.Run("variable set", func(t *testing.T) {
		t.Setenv("TOOLSHELF_TEST_VAR", "test_value")
		if got := requireEnv("TOOLSHELF_TEST_VAR"); got != "test_value" {
			t.Errorf("requireEnv() = %v, want test_value", got)
		}
	})

	t.Run("variable not set", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("requireEnv() should have panicked")
			}
		}()
		requireEnv("TOOLSHELF_TEST_VAR_MISSING")
	})
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single value", value: "value1", expected: []string{"value1"}},
		{name: "multiple values", value: "value1, value2 ,value3", expected: []string{"value1", "value2", "value3"}},
		{name: "quotes and blanks", value: `"10.0.0.0/8", , '127.0.0.1'`, expected: []string{"10.0.0.0/8", "127.0.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", value: "5s", def: time.Second, expected: 5 * time.Second},
		{name: "invalid duration uses default", value: "invalid", def: 10 * time.Second, expected: 10 * time.Second},
		{name: "missing variable uses default", value: "", def: 15 * time.Second, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOOLSHELF_TEST_DURATION", tt.value)
			if got := mustDuration("TOOLSHELF_TEST_DURATION", tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", def: false, expected: true},
		{name: "false value", value: "false", def: true, expected: false},
		{name: "invalid value uses default", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOOLSHELF_TEST_BOOL", tt.value)
			if got := mustBool("TOOLSHELF_TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOOLSHELF_REDIS_ADDR", "localhost:6379")
	t.Setenv("TOOLSHELF_REDIS_PASSWORD_REQUIRED", "false")

	cfg := Load()

	if cfg.UndoWindow != 5*time.Second {
		t.Errorf("UndoWindow = %v, want 5s", cfg.UndoWindow)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("StoreTimeout = %v, want 10s", cfg.StoreTimeout)
	}
	if cfg.ReloadInterval != 0 {
		t.Errorf("ReloadInterval = %v, want 0", cfg.ReloadInterval)
	}
	if cfg.NotifyCapacity != 50 {
		t.Errorf("NotifyCapacity = %d, want 50", cfg.NotifyCapacity)
	}
	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOOLSHELF_REDIS_ADDR", "redis:6379")
	t.Setenv("TOOLSHELF_REDIS_PASSWORD", "secret")
	t.Setenv("TOOLSHELF_UNDO_WINDOW", "2s")
	t.Setenv("TOOLSHELF_RELOAD_INTERVAL", "1m")
	t.Setenv("TOOLSHELF_MIRROR_PATH", "/tmp/toolshelf.db")
	t.Setenv("TOOLSHELF_ALLOWED_CIDRS", "10.0.0.0/8, 127.0.0.1")

	cfg := Load()

	if cfg.UndoWindow != 2*time.Second {
		t.Errorf("UndoWindow = %v, want 2s", cfg.UndoWindow)
	}
	if cfg.ReloadInterval != time.Minute {
		t.Errorf("ReloadInterval = %v, want 1m", cfg.ReloadInterval)
	}
	if cfg.MirrorPath != "/tmp/toolshelf.db" {
		t.Errorf("MirrorPath = %q", cfg.MirrorPath)
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want 2 entries", cfg.AllowedCIDRS)
	}
}

func TestLoadPanicsWithoutPassword(t *testing.T) {
	t.Setenv("TOOLSHELF_REDIS_ADDR", "localhost:6379")
	t.Setenv("TOOLSHELF_REDIS_PASSWORD_REQUIRED", "true")
	t.Setenv("TOOLSHELF_REDIS_PASSWORD", "")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Load() should have panicked")
		}
		if !strings.Contains(r.(string), "TOOLSHELF_REDIS_PASSWORD") {
			t.Errorf("panic = %v, want mention of TOOLSHELF_REDIS_PASSWORD", r)
		}
	}()
	Load()
}

func TestValidate(t *testing.T) {
	base := Config{UndoWindow: time.Second, StoreTimeout: time.Second}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero undo window", mutate: func(c *Config) { c.UndoWindow = 0 }, wantErr: true},
		{name: "zero store timeout", mutate: func(c *Config) { c.StoreTimeout = 0 }, wantErr: true},
		{name: "negative reload interval", mutate: func(c *Config) { c.ReloadInterval = -time.Second }, wantErr: true},
		{name: "password required", mutate: func(c *Config) { c.RedisPasswordRequired = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedacted(t *testing.T) {
	c := &Config{RedisUser: "admin", RedisPassword: "hunter2"}
	r := c.Redacted()
	if r.RedisPassword == "hunter2" || r.RedisUser == "admin" {
		t.Errorf("Redacted() leaked credentials: %+v", r)
	}
	if c.RedisPassword != "hunter2" {
		t.Error("Redacted() modified the original")
	}
}
