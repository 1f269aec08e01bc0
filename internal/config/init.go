package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// starterConfig mirrors Config with yaml tags for the generated file.
type starterConfig struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	LLM struct {
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"llm"`
	Security struct {
		AdminPassword string   `yaml:"admin_password"`
		AllowOrigins  []string `yaml:"allow_origins"`
	} `yaml:"security"`
	Analytics struct {
		WeeklySchedule string `yaml:"weekly_schedule"`
		CacheTTLHours  int    `yaml:"cache_ttl_hours"`
	} `yaml:"analytics"`
}

// WriteStarter writes a commented starter config file. Returns the path
// written, or an error if a config already exists there.
func WriteStarter(dataDir, adminPassword string) (string, error) {
	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, "healthai.yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists at %s", path)
	}

	var sc starterConfig
	sc.Server.Address = "0.0.0.0"
	sc.Server.Port = 8080
	sc.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	sc.LLM.Model = "gemini-2.0-flash"
	sc.LLM.MaxTokens = 2048
	sc.Security.AdminPassword = adminPassword
	sc.Security.AllowOrigins = []string{"*"}
	sc.Analytics.WeeklySchedule = "0 6 * * 1"
	sc.Analytics.CacheTTLHours = 24

	out, err := yaml.Marshal(&sc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal starter config: %w", err)
	}

	header := []byte("# HealthAI server configuration.\n# Env vars with the HEALTHAI_ prefix override any value here.\n")
	if err := os.WriteFile(path, append(header, out...), 0600); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return path, nil
}
