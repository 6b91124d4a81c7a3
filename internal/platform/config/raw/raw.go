// Package raw provides a minimal env reader used during bootstrap.
// It has NO dependency on the logger package to avoid import cycles
package raw

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// overlay holds defaults loaded from a YAML file; env always wins
var overlay atomic.Pointer[map[string]string]

// Conf is a namespaced view over environment variables (e.g., "API_", "SOURCE_SPACEX_")
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully-qualified env var
func (c Conf) key(k string) string { return c.prefix + k }

// Lookup returns the trimmed value for a fully-qualified key, env first then overlay
func Lookup(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if m := overlay.Load(); m != nil {
		return strings.TrimSpace((*m)[key])
	}
	return ""
}

// Get returns the trimmed value or the provided default if empty
func (c Conf) Get(key, def string) string {
	v := Lookup(c.key(key))
	if v == "" {
		return def
	}
	return v
}

// GetBool parses a bool-like value ("1|true|yes") with default fallback
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(Lookup(c.key(key)))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt parses a non-negative integer with default fallback; non-numeric -> def
func (c Conf) GetInt(key string, def int) int {
	s := Lookup(c.key(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// LoadYAML reads a YAML document and installs it as the fallback layer.
// Nested maps flatten into upper-cased keys joined by "_", so
//
//	source:
//	  spacex:
//	    base_url: https://api.spacexdata.com/v4
//
// answers SOURCE_SPACEX_BASE_URL
func LoadYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config overlay: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("config overlay %s: %w", path, err)
	}
	flat := map[string]string{}
	flatten("", doc, flat)
	overlay.Store(&flat)
	return nil
}

// ResetOverlay drops any loaded YAML defaults
func ResetOverlay() { overlay.Store(nil) }

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		name := strings.ToUpper(strings.TrimSpace(k))
		if prefix != "" {
			name = prefix + "_" + name
		}
		switch tv := v.(type) {
		case map[string]any:
			flatten(name, tv, out)
		case []any:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			out[name] = strings.Join(parts, ",")
		case nil:
		default:
			out[name] = fmt.Sprint(tv)
		}
	}
}
