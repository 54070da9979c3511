package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	ChatConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// File is the optional YAML configuration. Environment variables override every value.
type File struct {
	App      AppFile      `yaml:"app"`
	OAuth    OAuthFile    `yaml:"oauth"`
	Chat     ChatFile     `yaml:"chat"`
	Security SecurityFile `yaml:"security"`
	Cors     CorsFile     `yaml:"cors"`
}

type AppFile struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type CorsFile struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Chat
	Security
}

// New returns a Config read from environment variables and built-in defaults.
func New() Config {
	return fromFile(&File{})
}

// Load reads the YAML file at path and layers environment variables over it.
// An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[config.Load] ReadFile")
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "[config.Load] parse %s", path)
	}
	return fromFile(&file), nil
}

func fromFile(f *File) Config {
	return mainConfig{
		EnvVars:  EnvVars{file: &f.App},
		Cors:     Cors{file: &f.Cors},
		OAuth:    OAuth{file: &f.OAuth},
		Chat:     Chat{file: &f.Chat},
		Security: Security{file: &f.Security},
	}
}
