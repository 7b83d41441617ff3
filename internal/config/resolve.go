package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Source tells which input produced a ConnectionConfig.
type Source int

const (
	// SourceURL means the config came from the DATABASE_URL connection string.
	SourceURL Source = iota + 1
	// SourceFile means the config came from a section of the fallback file.
	SourceFile
)

func (s Source) String() string {
	switch s {
	case SourceURL:
		return EnvDatabaseURL
	case SourceFile:
		return "file"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Source Source
	Config ConnectionConfig

	// Path and Environment are set when Source is SourceFile.
	Path        string
	Environment string
}

// PasswordFunc supplies a password when the resolved source has none.
type PasswordFunc func() (string, error)

// Section is one environment entry of the fallback file.
type Section struct {
	Adapter  string `mapstructure:"adapter" yaml:"adapter"`
	Database string `mapstructure:"database" yaml:"database"`
	Host     string `mapstructure:"host" yaml:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// Locate decides where connection parameters come from and returns them as
// found. A non-blank DATABASE_URL wins; otherwise the section of the fallback
// file named by s.Environment is used. The password may be empty.
func Locate(s Settings) (*Resolution, error) {
	var res *Resolution
	var err error

	if url := strings.TrimSpace(s.DatabaseURL); url != "" {
		res, err = resolveURL(url)
	} else {
		res, err = resolveFile(s.ConfigPath, s.Environment)
	}
	if err != nil {
		return nil, err
	}

	if err := res.Config.Validate(); err != nil {
		return nil, newError(KindMalformed, res.describe(), err)
	}
	return res, nil
}

// Resolve is Locate plus the password fallback: when neither source carries a
// password, password is consulted, if non-nil.
func Resolve(s Settings, password PasswordFunc) (*Resolution, error) {
	res, err := Locate(s)
	if err != nil {
		return nil, err
	}

	if res.Config.Password == "" {
		if password == nil {
			return nil, newError(KindMalformed, res.describe(), errors.New("password is required"))
		}
		pw, err := password()
		if err != nil {
			return nil, newError(KindMalformed, res.describe(), err)
		}
		res.Config.Password = pw
	}

	return res, nil
}

func resolveURL(raw string) (*Resolution, error) {
	cfg, err := parseURL(raw)
	if err != nil {
		return nil, err
	}
	return &Resolution{Source: SourceURL, Config: cfg}, nil
}

func resolveFile(path, env string) (*Resolution, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if env == "" {
		env = DefaultEnvironment
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(KindNoSource,
				fmt.Sprintf("%s is not set and %s does not exist", EnvDatabaseURL, path), nil)
		}
		return nil, newError(KindMalformed, "cannot read "+path, err)
	}

	section, err := ReadSection(path, env)
	if err != nil {
		return nil, err
	}
	if section.Adapter != Adapter {
		return nil, newError(KindUnsupportedAdapter,
			fmt.Sprintf("%s: %s adapter is %q, expected %q", path, env, section.Adapter, Adapter), nil)
	}

	return &Resolution{
		Source: SourceFile,
		Config: ConnectionConfig{
			Database: section.Database,
			Host:     section.Host,
			Port:     section.Port,
			User:     section.Username,
			Password: section.Password,
		},
		Path:        path,
		Environment: env,
	}, nil
}

// ReadSection loads the named environment section of a fallback file.
func ReadSection(path, env string) (*Section, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, newError(KindMalformed, "error reading "+path, err)
	}

	sub := v.Sub(env)
	if sub == nil {
		return nil, newError(KindMalformed, fmt.Sprintf("%s has no %q section", path, env), nil)
	}

	var section Section
	if err := sub.Unmarshal(&section); err != nil {
		return nil, newError(KindMalformed, fmt.Sprintf("error unmarshaling %q section of %s", env, path), err)
	}
	return &section, nil
}

func (r *Resolution) describe() string {
	if r.Source == SourceFile {
		return fmt.Sprintf("%s section of %s", r.Environment, r.Path)
	}
	return EnvDatabaseURL
}
