package raw

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfGet(t *testing.T) {
	t.Setenv("CORE_INGEST_NAME", " launchpipe ")
	t.Setenv("API_PORT", " 8080 ")

	root := New()
	api := root.Prefix("API_")

	tests := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{name: "root no default used", conf: root, key: "CORE_INGEST_NAME", def: "x", want: "launchpipe"},
		{name: "prefixed hit", conf: api, key: "PORT", def: "x", want: "8080"},
		{name: "missing returns default", conf: api, key: "MISSING", def: "defv", want: "defv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfGetBoolAndInt(t *testing.T) {
	c := New().Prefix("RAWB_")
	t.Setenv("RAWB_T1", "YES")
	t.Setenv("RAWB_T2", " 1 ")
	t.Setenv("RAWB_F1", "no")
	t.Setenv("RAWB_N", "42")
	t.Setenv("RAWB_BAD", "4x")

	if !c.GetBool("T1", false) || !c.GetBool("T2", false) {
		t.Fatalf("truthy values not parsed")
	}
	if c.GetBool("F1", true) {
		t.Fatalf("falsy value parsed as true")
	}
	if !c.GetBool("MISSING", true) {
		t.Fatalf("default not used for missing bool")
	}
	if got := c.GetInt("N", 0); got != 42 {
		t.Fatalf("GetInt = %d, want 42", got)
	}
	if got := c.GetInt("BAD", 7); got != 7 {
		t.Fatalf("GetInt bad = %d, want default 7", got)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launchpipe.yaml")
	doc := []byte(`
source:
  spacex:
    base_url: https://example.test/v4
    max_pages: 12
core:
  ingest:
    lease_backend: redis
log:
  level: warn
tags: [a, b]
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadYAML(path); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	t.Cleanup(ResetOverlay)

	src := New().Prefix("SOURCE_SPACEX_")
	if got := src.Get("BASE_URL", ""); got != "https://example.test/v4" {
		t.Fatalf("overlay BASE_URL = %q", got)
	}
	if got := src.GetInt("MAX_PAGES", 0); got != 12 {
		t.Fatalf("overlay MAX_PAGES = %d", got)
	}
	if got := Lookup("TAGS"); got != "a,b" {
		t.Fatalf("overlay list = %q", got)
	}

	// env beats overlay
	t.Setenv("CORE_INGEST_LEASE_BACKEND", "pg")
	if got := New().Prefix("CORE_INGEST_").Get("LEASE_BACKEND", ""); got != "pg" {
		t.Fatalf("env should win over overlay, got %q", got)
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	if err := LoadYAML(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("a: [unterminated"), 0o600)
	if err := LoadYAML(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}
