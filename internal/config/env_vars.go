package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	ConfigFileVar  = "CONFIG_FILE"
	defaultPort    = "8000"
	defaultAppName = "PKCE Chat"
)

type EnvVars struct {
	file *AppFile
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, firstNonEmpty(e.file.Port, defaultPort))
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, firstNonEmpty(e.file.Name, defaultAppName))
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envVar, firstNonEmpty(e.file.Env, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, firstNonEmpty(e.file.LogLevel, "info"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt reads an integer variable, falling back on a missing or malformed value.
func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", value).Msg("Ignoring malformed integer")
		return defaultValue
	}
	return n
}

// GetEnvDuration reads a time.ParseDuration value, falling back on a missing or malformed value.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("var", envVar).Str("value", value).Msg("Ignoring malformed duration")
		return defaultValue
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
