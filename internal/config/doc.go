// Package config resolves the settings codebase-guide runs with.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults (Defaults)
//  2. An optional config file: .codebase-guide.yaml, .codebase-guide.yml or
//     .codebase-guide.json in the working directory, or an explicit --config
//     path. JSON files may contain comments (JSONC), stripped with
//     github.com/tidwall/jsonc before decoding.
//  3. A .env file in the working directory (loaded with
//     github.com/joho/godotenv, never overriding variables already set)
//     and the process environment.
//  4. Command-line flags, applied by the cli package via Overrides.
//
// The merged Config is validated with github.com/go-playground/validator.
// The API key is deliberately NOT validated here: its absence is reported by
// the analysis client, right before the network call it guards.
package config
