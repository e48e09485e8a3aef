package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Env is a namespaced view over environment variables (e.g. "CODEBASE_GUIDE_").
// Use NewEnv() for global access, or Prefix for scoped lookups.
type Env struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnv returns a root Env reading the process environment
func NewEnv() Env { return Env{lookup: os.LookupEnv} }

// Prefix returns a child Env with an additional prefix
func (e Env) Prefix(p string) Env { return Env{prefix: e.prefix + p, lookup: e.lookup} }

// key composes the fully-qualified variable name
func (e Env) key(k string) string { return e.prefix + k }

// String returns the trimmed value or def if missing/empty
func (e Env) String(key, def string) string {
	v, ok := e.lookup(e.key(key))
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// Duration parses a Go duration ("90s", "2m") or returns def if missing/empty
func (e Env) Duration(key string, def time.Duration) (time.Duration, error) {
	s := e.String(key, "")
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("invalid duration in %s=%q (e.g. 90s, 2m): %w", e.key(key), s, err)
	}
	return d, nil
}

// CSV returns the non-empty trimmed entries of a comma-separated variable; def if missing/empty
func (e Env) CSV(key string, def []string) []string {
	s := e.String(key, "")
	if s == "" {
		return def
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// EnvFromMap returns an Env backed by a fixed map instead of the process
// environment.
func EnvFromMap(m map[string]string) Env {
	return Env{lookup: func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}}
}
