package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	GuestID   string
	GuestFile string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("SNAPFEST_SERVER", "http://localhost:8080"),
		GuestID:   os.Getenv("SNAPFEST_GUEST"),
		GuestFile: getEnvOrDefault("SNAPFEST_GUEST_FILE", defaultGuestFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadGuestID loads the guest id from file if not already set
func (c *Config) LoadGuestID() error {
	if c.GuestID != "" {
		return nil
	}

	data, err := os.ReadFile(c.GuestFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No saved identity is fine
		}
		return err
	}

	c.GuestID = strings.TrimSpace(string(data))
	return nil
}

// SaveGuestID saves the guest id to the guest file
func (c *Config) SaveGuestID(id string) error {
	c.GuestID = id

	dir := filepath.Dir(c.GuestFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.GuestFile, []byte(id), 0600)
}

func defaultGuestFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".snapfest/guest"
	}
	return filepath.Join(home, ".snapfest", "guest")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
