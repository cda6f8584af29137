// Package config holds the settings an APIKit client is built from.
//
// A Config is passed explicitly to the client at construction; nothing is
// read from the environment unless [Load] is called.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/codeartlibs/apikit-go/internal/validate"
)

// Defaults for the authentication exchange and transport.
const (
	DefaultAuthPath     = "/auth"
	DefaultAuthKeyField = "app_key"
	DefaultTokenField   = "token"
	DefaultTokenHeader  = "Authorization"
	DefaultTokenScheme  = "Bearer"
	DefaultTimeout      = 5 * time.Second
	DefaultUserAgent    = "apikit-go/" + Version

	// EnvPrefix is prepended to every key read by Load, e.g. APIKIT_BASE_URL.
	EnvPrefix = "APIKIT"
)

// Version of the SDK, reported in the default User-Agent.
const Version = "0.1.0"

// Config describes the remote API and how the client authenticates against it.
type Config struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// AuthPath is the endpoint the app key is posted to.
	AuthPath string `mapstructure:"auth_path" validate:"required,startswith=/"`
	// AuthKeyField names the JSON field carrying the app key in the auth request.
	AuthKeyField string `mapstructure:"auth_key_field" validate:"required"`
	// TokenField names the JSON field carrying the token in the auth response.
	TokenField string `mapstructure:"token_field" validate:"required"`
	// TokenHeader is the header the token is sent in. TokenScheme, when set,
	// prefixes the token value ("Bearer <token>").
	TokenHeader string `mapstructure:"token_header" validate:"required"`
	TokenScheme string `mapstructure:"token_scheme"`

	// PublicPaths may be requested before authenticating. Entries ending
	// in "/*" match any path below the prefix.
	PublicPaths []string `mapstructure:"public_paths" validate:"dive,startswith=/"`

	// Timeout bounds each request. Zero means no deadline. Load reads it
	// from APIKIT_REQUEST_TIMEOUT_SECS.
	Timeout time.Duration `mapstructure:"-"`

	UserAgent string `mapstructure:"user_agent"`
	// Debug logs every exchange as an httpie command line.
	Debug bool `mapstructure:"debug"`
}

// New returns a Config for baseURL with every other field defaulted.
func New(baseURL string) Config {
	return Config{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		AuthPath:     DefaultAuthPath,
		AuthKeyField: DefaultAuthKeyField,
		TokenField:   DefaultTokenField,
		TokenHeader:  DefaultTokenHeader,
		TokenScheme:  DefaultTokenScheme,
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
	}
}

// Validate reports every invalid field at once as validate.FieldErrors.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if c.Timeout < 0 {
		return errors.New("validating config: timeout must not be negative")
	}

	return nil
}

// IsPublic reports whether path may be requested without a token.
func (c Config) IsPublic(path string) bool {
	for _, p := range c.PublicPaths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if p == path {
			return true
		}
	}

	return false
}

// Load reads a Config from APIKIT_* environment variables. If envFile is
// not empty it is loaded first; a missing file is not an error but an
// unreadable or malformed one is. Values already present in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := New("")
	v.SetDefault("base_url", "")
	v.SetDefault("auth_path", defaults.AuthPath)
	v.SetDefault("auth_key_field", defaults.AuthKeyField)
	v.SetDefault("token_field", defaults.TokenField)
	v.SetDefault("token_header", defaults.TokenHeader)
	v.SetDefault("token_scheme", defaults.TokenScheme)
	v.SetDefault("public_paths", []string{})
	v.SetDefault("request_timeout_secs", int(defaults.Timeout/time.Second))
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("debug", false)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// viper reads list env values as a single string.
	cfg.PublicPaths = splitList(cfg.PublicPaths)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Timeout = time.Duration(v.GetInt("request_timeout_secs")) * time.Second

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, p)
		}
	}
	return out
}
