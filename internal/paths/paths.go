package paths

import (
	"os"
	"path/filepath"
)

// EnvHome overrides the default config directory when set.
const EnvHome = "DEVDOCK_HOME"

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// ConfigDir returns $DEVDOCK_HOME if set, otherwise ~/.devdock.
func ConfigDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	return filepath.Join(home(), ".devdock")
}

// SettingsFile returns <dir>/settings.json.
func SettingsFile(dir string) string {
	return filepath.Join(dir, "settings.json")
}

// ConfigFile returns <dir>/config.yaml.
func ConfigFile(dir string) string {
	return filepath.Join(dir, "config.yaml")
}

// DescriptorFile returns <dir>/<project>.yml, the rendered compose file for a project.
func DescriptorFile(dir, project string) string {
	return filepath.Join(dir, project+".yml")
}

// LogFile returns <dir>/logs/devdock.log.
func LogFile(dir string) string {
	return filepath.Join(dir, "logs", "devdock.log")
}
