package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvVars are the process-level settings.
type EnvVars struct {
	AppName    string `yaml:"app_name"    env:"APP_NAME"    env-default:"Billing Console"`
	Env        string `yaml:"env"         env:"ENV"         env-default:"DEV"`
	LogLevel   string `yaml:"log_level"   env:"LOG_LEVEL"   env-default:"info"`
	DataFolder string `yaml:"data_folder" env:"DATA_FOLDER" env-default:"~/.billingctl"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.LogLevel)
}

// GetDataFolder returns the data folder with a leading ~ expanded.
func (e EnvVars) GetDataFolder() string {
	return expandHome(e.DataFolder)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
