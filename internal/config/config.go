package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/codebase-guide/internal/model"
)

// Built-in defaults.
const (
	DefaultModel       = "gemini-2.5-pro-preview-05-06"
	DefaultBaseURL     = "https://generativelanguage.googleapis.com"
	DefaultAPITimeout  = 120 * time.Second
	DefaultPackTimeout = 10 * time.Minute
	DefaultCacheTTL    = 5 * time.Minute
)

// APIKeyEnvVar holds the Gemini credential.
const APIKeyEnvVar = "GEMINI_API_KEY"

// configFileNames are searched, in order, in the working directory when no
// explicit --config path is given.
var configFileNames = []string{
	".codebase-guide.yaml",
	".codebase-guide.yml",
	".codebase-guide.json",
}

// Config is the fully merged configuration for one invocation.
type Config struct {
	// APIKey is read from GEMINI_API_KEY only; it is never taken from a
	// config file so that project files can be committed safely.
	APIKey string `yaml:"-"`

	// BaseURL is the scheme and host of the generateContent endpoint.
	BaseURL string `yaml:"baseURL" validate:"required,url"`

	// Model is the default model identifier, overridable by --model.
	Model string `yaml:"model" validate:"required"`

	// APITimeout bounds the single analysis HTTP request.
	APITimeout time.Duration `yaml:"apiTimeout" validate:"gt=0"`

	// PackTimeout bounds the packaging subprocess.
	PackTimeout time.Duration `yaml:"packTimeout" validate:"gt=0"`

	// CacheTTL is how long analysis results stay in the in-process cache.
	// Zero disables the cache.
	CacheTTL time.Duration `yaml:"cacheTTL" validate:"gte=0"`

	// AdditionalIgnore lists project-wide ignore patterns that are always
	// appended to the built-in exclusions, before any --additional-ignore.
	AdditionalIgnore []string `yaml:"additionalIgnore"`

	// Packager selects the packaging executable.
	Packager PackagerConfig `yaml:"packager"`

	// Source is the config file that was loaded, empty if none.
	Source string `yaml:"-"`
}

// PackagerConfig selects the packaging executable and its leading arguments.
// The ignore list and the stdout flag are always appended by the packager.
type PackagerConfig struct {
	Command string   `yaml:"command" validate:"required"`
	Args    []string `yaml:"args"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		APITimeout:  DefaultAPITimeout,
		PackTimeout: DefaultPackTimeout,
		CacheTTL:    DefaultCacheTTL,
		Packager: PackagerConfig{
			Command: "npx",
			Args:    []string{"--yes", "repomix"},
		},
	}
}

// LoadOptions controls where Load looks for its inputs.
type LoadOptions struct {
	// Path is an explicit config file. When set, the file must exist.
	Path string

	// Dir is the directory searched for config and .env files.
	// Empty means the current working directory.
	Dir string

	// Env overrides the environment view; the zero value reads the process
	// environment merged with Dir/.env.
	Env *Env
}

// fileConfig mirrors the on-disk format. Durations are strings ("2m") so the
// same struct decodes from YAML and JSON.
type fileConfig struct {
	Model            string   `yaml:"model" json:"model"`
	BaseURL          string   `yaml:"baseURL" json:"baseURL"`
	APITimeout       string   `yaml:"apiTimeout" json:"apiTimeout"`
	PackTimeout      string   `yaml:"packTimeout" json:"packTimeout"`
	CacheTTL         string   `yaml:"cacheTTL" json:"cacheTTL"`
	AdditionalIgnore []string `yaml:"additionalIgnore" json:"additionalIgnore"`
	Packager         struct {
		Command string   `yaml:"command" json:"command"`
		Args    []string `yaml:"args" json:"args"`
	} `yaml:"packager" json:"packager"`
}

// Load merges defaults, the config file and the environment.
// Flag overrides are applied afterwards with Apply, then Validate is called.
//
// All failures are returned as model.CLIError with ExitConfigError.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Defaults()

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, model.NewConfigError("failed to get current directory", err)
		}
		dir = wd
	}

	// Step 1: Config file (explicit path or first match in dir).
	path, err := resolveConfigPath(opts.Path, dir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		fc, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, model.NewConfigError(fmt.Sprintf("invalid config file %s", path), err)
		}
		cfg.Source = path
	}

	// Step 2: Environment, with .env values as fallback.
	env := opts.Env
	if env == nil {
		e, err := envWithDotenv(filepath.Join(dir, ".env"))
		if err != nil {
			return nil, err
		}
		env = &e
	}
	if err := cfg.applyEnv(*env); err != nil {
		return nil, model.NewConfigError("invalid environment configuration", err)
	}

	return cfg, nil
}

// resolveConfigPath returns the config file to load, or "" if none exists.
func resolveConfigPath(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", model.NewConfigError(fmt.Sprintf("config file not found: %s", explicit), err)
		}
		return explicit, nil
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// readConfigFile decodes a YAML or JSONC config file by extension.
func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		// Strip comments and trailing commas before handing the bytes to
		// encoding/json.
		if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
			return nil, model.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
		}
		return &fc, nil
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, model.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return &fc, nil
}

// applyFile overlays non-empty file values onto c.
func (c *Config) applyFile(fc *fileConfig) error {
	if fc.Model != "" {
		c.Model = fc.Model
	}
	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	var err error
	if c.APITimeout, err = parseDurationOr("apiTimeout", fc.APITimeout, c.APITimeout); err != nil {
		return err
	}
	if c.PackTimeout, err = parseDurationOr("packTimeout", fc.PackTimeout, c.PackTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = parseDurationOr("cacheTTL", fc.CacheTTL, c.CacheTTL); err != nil {
		return err
	}
	if len(fc.AdditionalIgnore) > 0 {
		c.AdditionalIgnore = append([]string(nil), fc.AdditionalIgnore...)
	}
	if fc.Packager.Command != "" {
		c.Packager.Command = fc.Packager.Command
		// A custom command comes with its own argument list, even if empty.
		c.Packager.Args = append([]string(nil), fc.Packager.Args...)
	}
	return nil
}

// applyEnv overlays environment values onto c.
func (c *Config) applyEnv(env Env) error {
	c.APIKey = env.String(APIKeyEnvVar, c.APIKey)
	c.BaseURL = env.String("GEMINI_BASE_URL", c.BaseURL)

	app := env.Prefix("CODEBASE_GUIDE_")
	c.Model = app.String("MODEL", c.Model)
	c.AdditionalIgnore = app.CSV("ADDITIONAL_IGNORE", c.AdditionalIgnore)

	var err error
	if c.APITimeout, err = app.Duration("API_TIMEOUT", c.APITimeout); err != nil {
		return err
	}
	if c.PackTimeout, err = app.Duration("PACK_TIMEOUT", c.PackTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = app.Duration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	return nil
}

// Overrides carries flag values that win over every other layer.
// Zero values leave the configuration untouched.
type Overrides struct {
	Model      string
	APITimeout time.Duration
}

// Apply overlays flag overrides onto c.
func (c *Config) Apply(o Overrides) {
	if m := strings.TrimSpace(o.Model); m != "" {
		c.Model = m
	}
	if o.APITimeout > 0 {
		c.APITimeout = o.APITimeout
	}
}

// IgnoreCSV joins the configured project-wide ignore patterns with the
// --additional-ignore flag value into one comma-separated list.
func (c *Config) IgnoreCSV(flagValue string) string {
	parts := make([]string, 0, len(c.AdditionalIgnore)+1)
	parts = append(parts, c.AdditionalIgnore...)
	if strings.TrimSpace(flagValue) != "" {
		parts = append(parts, flagValue)
	}
	return strings.Join(parts, ",")
}

// Validate checks the merged configuration.
// Returns a CLIError with ExitConfigError naming the offending keys.
func (c *Config) Validate() error {
	err := validate().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.NewConfigError("invalid configuration", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return model.NewConfigError("invalid configuration: "+strings.Join(msgs, "; "), nil)
}

// validate builds a validator that reports yaml key names, matching what the
// user writes in the config file.
func validate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("yaml")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	return v
}

// envWithDotenv returns an Env that reads the process environment first and
// falls back to values from the given .env file. A missing file is fine.
func envWithDotenv(path string) (Env, error) {
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewEnv(), nil
		}
		return Env{}, model.NewConfigError(fmt.Sprintf("failed to parse %s", path), err)
	}
	return Env{lookup: func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}}, nil
}

func parseDurationOr(name, value string, def time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def, fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
	}
	return d, nil
}
