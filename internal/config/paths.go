package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigDir overrides the default config directory.
const EnvConfigDir = "SKUA_CONFIG_DIR"

// ResolveDir picks the config directory: an explicit flag value, then
// $SKUA_CONFIG_DIR, then ~/.config/skua.
func ResolveDir(flag string) (string, error) {
	if flag != "" {
		return ExpandHome(flag)
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "skua"), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// ProjectDataDir is the bind-mount persistence directory for a project's
// agent state.
func (s *Store) ProjectDataDir(project, agent string) string {
	if agent == "" || agent == "claude" {
		return filepath.Join(s.dir, "claude-data", project)
	}
	return filepath.Join(s.dir, "agent-data", agent, project)
}

// HistoryPath is the SQLite verdict log.
func (s *Store) HistoryPath() string {
	return filepath.Join(s.dir, "history.db")
}
