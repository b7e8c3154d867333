package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MYSQL_HOST", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != "openai" {
		t.Fatalf("unexpected provider %q", cfg.AI.Provider)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.AI.Timeout)
	}
	if cfg.Store.Persistent() {
		t.Fatalf("expected memory store without MYSQL_HOST, got %q", cfg.Store.Driver)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Fatalf("unexpected top k %d", cfg.Retrieval.TopK)
	}
}

func TestLoadMySQLFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_USER", "augustine")
	t.Setenv("MYSQL_PASS", "secret")
	t.Setenv("MYSQL_DB", "chat")

	cfg, err := loadStoreConfig()
	if err != nil {
		t.Fatalf("loadStoreConfig err: %v", err)
	}
	if cfg.Driver != "mysql" {
		t.Fatalf("expected mysql driver, got %q", cfg.Driver)
	}
	want := "augustine:secret@tcp(db.internal:3306)/chat"
	if !strings.HasPrefix(cfg.DSN, want) {
		t.Fatalf("unexpected dsn %q", cfg.DSN)
	}
	if !strings.Contains(cfg.DSN, "parseTime=true") {
		t.Fatalf("dsn must parse times: %q", cfg.DSN)
	}
}

func TestLoadStoreRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "oracle")

	if _, err := loadStoreConfig(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestServerConfigAcceptsHostPort(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.Addr)
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("X_TIMEOUT", "45")
	d, err := parseDurationEnv("X_TIMEOUT", time.Second)
	if err != nil || d != 45*time.Second {
		t.Fatalf("expected 45s, got %v (%v)", d, err)
	}

	t.Setenv("X_TIMEOUT", "1m30s")
	d, err = parseDurationEnv("X_TIMEOUT", time.Second)
	if err != nil || d != 90*time.Second {
		t.Fatalf("expected 90s, got %v (%v)", d, err)
	}

	t.Setenv("X_TIMEOUT", "soon")
	if _, err := parseDurationEnv("X_TIMEOUT", time.Second); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestArkEnabled(t *testing.T) {
	if (ArkConfig{APIKey: "k"}).Enabled() {
		t.Fatal("model is required")
	}
	if !(ArkConfig{APIKey: "k", Model: "m"}).Enabled() {
		t.Fatal("api key + model should enable ark")
	}
	if !(ArkConfig{AccessKey: "a", SecretKey: "s", Model: "m"}).Enabled() {
		t.Fatal("ak/sk + model should enable ark")
	}
}

func TestOllamaURL(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"http://localhost:11434", "http://localhost:11434"},
		{"127.0.0.1:11434", "http://127.0.0.1:11434"},
		{"ollama.internal", "http://ollama.internal:11434"},
		{"0.0.0.0", "http://0.0.0.0:11434"},
		{"[::1]:11435", "http://[::1]:11435"},
		{"https://ollama.example.com", "https://ollama.example.com:443"},
		{"http://gateway/ollama", "http://gateway:80/ollama"},
		{"", "http://127.0.0.1:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			u, err := AIConfig{OllamaHost: tt.host}.OllamaURL()
			if err != nil {
				t.Fatalf("OllamaURL(%q) err: %v", tt.host, err)
			}
			if u.String() != tt.want {
				t.Fatalf("OllamaURL(%q) = %q, want %q", tt.host, u.String(), tt.want)
			}
		})
	}

	for _, bad := range []string{"ftp://host", "host:port"} {
		if _, err := (AIConfig{OllamaHost: bad}).OllamaURL(); err == nil {
			t.Errorf("OllamaURL(%q) should fail", bad)
		}
	}
}

func TestLoadVoiceToggles(t *testing.T) {
	t.Setenv("AI_VOICE_POLISH", "")
	t.Setenv("AI_VOICE_EMOJI", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.VoicePolish || cfg.AI.VoiceEmoji {
		t.Fatal("answers should be returned raw by default")
	}

	t.Setenv("AI_VOICE_POLISH", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.AI.VoicePolish {
		t.Fatal("AI_VOICE_POLISH not applied")
	}
}
