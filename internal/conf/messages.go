package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MessagesConfig contains the static reply texts
type MessagesConfig struct {
	Start        string `yaml:"start"`
	Help         string `yaml:"help"`
	Guidance     string `yaml:"guidance"`
	AccessDenied string `yaml:"access_denied"`
}

// LoadMessagesConfig loads reply texts from a YAML file, falling back to
// the built-in defaults when no file is found
func LoadMessagesConfig(configPath string) (*MessagesConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/messages.yaml",
			"/etc/reject-console/messages.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "messages.yaml"))
		}
	}

	var data []byte
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data = b
			break
		}
	}

	if data == nil {
		return DefaultMessagesConfig(), nil
	}

	var config MessagesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DefaultMessagesConfig(), fmt.Errorf("failed to parse messages.yaml: %w", err)
	}

	config.fillDefaults()
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *MessagesConfig) fillDefaults() {
	defaults := DefaultMessagesConfig()

	if strings.TrimSpace(c.Start) == "" {
		c.Start = defaults.Start
	}
	if strings.TrimSpace(c.Help) == "" {
		c.Help = defaults.Help
	}
	if strings.TrimSpace(c.Guidance) == "" {
		c.Guidance = defaults.Guidance
	}
	if strings.TrimSpace(c.AccessDenied) == "" {
		c.AccessDenied = defaults.AccessDenied
	}
}

// DefaultMessagesConfig returns the built-in reply texts
func DefaultMessagesConfig() *MessagesConfig {
	return &MessagesConfig{
		Start: `Mandrill Reject Console

Available commands:
/check <email> - Check whether an address is on the reject list
/checkbulk <email1> <email2> ... - Check several addresses at once
/remove <email> - Remove an address from the reject list
/listblocked - Show every blocked address
/chatid - Show this chat's id (for allowlist setup)
/help - Show usage`,
		Help: `Usage:

/check test@gmail.com
  Check whether the address is on the reject list

/checkbulk a@test.com b@test.com c@test.com
  Check several addresses at once

/remove test@gmail.com
  Remove the address from the reject list

/listblocked
  Show every blocked address

Or just send one or more addresses without a command to check them.`,
		Guidance:     "Send the address you want to check, or use /help to see the commands.",
		AccessDenied: "Access denied. Your user id is not on the allowlist.",
	}
}
