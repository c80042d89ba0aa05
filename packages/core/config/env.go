package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "HITCLIENT"

// DefaultDotenvFile is loaded by LoadEnv when no path is given.
const DefaultDotenvFile = ".env"

var envKeys = []string{
	"base_uri",
	"headers",
	"timeout",
	"follow_redirects",
	"max_redirects",
	"validate_ssl",
	"proxy",
	"transport",
	"rate_limit",
	"rate_burst",
	"request_id_header",
	"log_level",
	"no_color",
}

// LoadEnv returns an overlay holding only the settings present in the
// environment, e.g. HITCLIENT_BASE_URI or HITCLIENT_TIMEOUT. A dotenv file is
// loaded first without overriding variables that are already set. A missing
// default .env is ignored; a missing explicit dotenvPath is an error.
//
// HITCLIENT_HEADERS holds a JSON object of header names to values.
func LoadEnv(dotenvPath string) (*Config, error) {
	path := dotenvPath
	if path == "" {
		path = DefaultDotenvFile
	}
	if err := godotenv.Load(path); err != nil {
		if dotenvPath != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	overlay := &Config{}
	if v.IsSet("base_uri") {
		overlay.BaseURI = v.GetString("base_uri")
	}
	if v.IsSet("headers") {
		overlay.Headers = v.GetStringMapString("headers")
	}
	if v.IsSet("timeout") {
		overlay.Timeout = v.GetInt("timeout")
	}
	if v.IsSet("follow_redirects") {
		overlay.FollowRedirects = BoolPtr(v.GetBool("follow_redirects"))
	}
	if v.IsSet("max_redirects") {
		overlay.MaxRedirects = v.GetInt("max_redirects")
	}
	if v.IsSet("validate_ssl") {
		overlay.ValidateSSL = BoolPtr(v.GetBool("validate_ssl"))
	}
	if v.IsSet("proxy") {
		overlay.Proxy = v.GetString("proxy")
	}
	if v.IsSet("transport") {
		overlay.Transport = v.GetString("transport")
	}
	if v.IsSet("rate_limit") {
		overlay.RateLimit = v.GetFloat64("rate_limit")
	}
	if v.IsSet("rate_burst") {
		overlay.RateBurst = v.GetInt("rate_burst")
	}
	if v.IsSet("request_id_header") {
		overlay.RequestIDHeader = v.GetString("request_id_header")
	}
	if v.IsSet("log_level") {
		overlay.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("no_color") {
		overlay.NoColor = BoolPtr(v.GetBool("no_color"))
	}

	return overlay, nil
}

// Load resolves the effective configuration: defaults, then the config file
// (path or the first file found in the working directory), then the
// environment overlay.
func Load(path, dotenvPath string) (*Config, error) {
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	envCfg, err := LoadEnv(dotenvPath)
	if err != nil {
		return nil, err
	}
	return DefaultConfig().Merge(fileCfg).Merge(envCfg), nil
}
