package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables read by the resolver.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvName        = "POSTGRESSOR_ENV"
	EnvRailsName   = "RAILS_ENV"
	EnvDebug       = "POSTGRESSOR_DEBUG"
	EnvConfigPath  = "POSTGRESSOR_CONFIG"
)

const (
	// DefaultEnvironment selects the fallback file section when no
	// environment name is set.
	DefaultEnvironment = "production"
	// DefaultConfigPath is the fallback file, relative to the working directory.
	DefaultConfigPath = "config/database.yml"
	// Adapter is the only adapter accepted in the fallback file.
	Adapter = "postgresql"
)

// Settings holds everything the resolver reads from the process environment.
// Command-line flags may override individual fields before resolution.
type Settings struct {
	DatabaseURL string
	Environment string
	ConfigPath  string
	Debug       bool
}

// LoadSettings reads Settings from environment variables.
func LoadSettings() Settings {
	v := viper.New()

	_ = v.BindEnv("url", EnvDatabaseURL)
	_ = v.BindEnv("env", EnvName, EnvRailsName)
	_ = v.BindEnv("config", EnvConfigPath)
	_ = v.BindEnv("debug", EnvDebug)

	v.SetDefault("env", DefaultEnvironment)
	v.SetDefault("config", DefaultConfigPath)
	v.SetDefault("debug", false)

	s := Settings{
		DatabaseURL: strings.TrimSpace(v.GetString("url")),
		Environment: strings.TrimSpace(v.GetString("env")),
		ConfigPath:  strings.TrimSpace(v.GetString("config")),
		Debug:       v.GetBool("debug"),
	}
	if s.Environment == "" {
		s.Environment = DefaultEnvironment
	}
	if s.ConfigPath == "" {
		s.ConfigPath = DefaultConfigPath
	}
	return s
}

// ConnectionConfig holds the resolved connection parameters. It is built once
// per invocation and passed by value to every operation.
type ConnectionConfig struct {
	Database string
	Host     string // empty means the tool's default, usually the local socket
	Port     int    // 0 means absent
	User     string
	Password string

	// SourceURL is the original connection string, kept for diagnostics.
	SourceURL string
}

// Validate checks the fields every operation depends on.
func (c ConnectionConfig) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database name is empty")
	}
	if c.User == "" {
		return fmt.Errorf("user is empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// CLIArgs returns the -h/-U[/-p] arguments shared by the non-superuser
// commands. The -h pair is left out when no host was given.
func (c ConnectionConfig) CLIArgs() []string {
	var args []string
	if c.Host != "" {
		args = append(args, "-h", c.Host)
	}
	args = append(args, "-U", c.User)
	if c.Port != 0 {
		args = append(args, "-p", strconv.Itoa(c.Port))
	}
	return args
}

// ConnString returns a postgres:// URL suitable for pgx.
func (c ConnectionConfig) ConnString() string {
	return c.url().String()
}

// Masked returns the connection URL with the password shown as "***".
func (c ConnectionConfig) Masked() string {
	// Redacted writes "xxxxx"; "*" would be percent-encoded by url.UserPassword.
	return strings.Replace(c.url().Redacted(), ":xxxxx@", ":***@", 1)
}

func (c ConnectionConfig) url() *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	if c.Port != 0 {
		u.Host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	} else {
		u.Host = c.Host
	}
	return u
}

// parseURL turns a connection string into a ConnectionConfig.
func parseURL(raw string) (ConnectionConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		// url.Error repeats the input, which carries the password.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return ConnectionConfig{}, newError(KindMalformed, "cannot parse "+EnvDatabaseURL, err)
	}

	switch u.Scheme {
	case "postgres":
	default:
		return ConnectionConfig{}, newError(KindUnsupportedAdapter,
			fmt.Sprintf("%s scheme is %q, expected \"postgres\"", EnvDatabaseURL, u.Scheme), nil)
	}

	cfg := ConnectionConfig{
		Database:  strings.TrimPrefix(u.Path, "/"),
		Host:      u.Hostname(),
		SourceURL: raw,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return ConnectionConfig{}, newError(KindMalformed, fmt.Sprintf("invalid port %q", p), err)
		}
		cfg.Port = port
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}

	return cfg, nil
}
