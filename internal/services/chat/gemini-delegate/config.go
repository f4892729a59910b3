// internal/services/chat/gemini-delegate/config.go
package geminidelegate

import "time"

type Config struct {
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:  "https://generativelanguage.googleapis.com",
		Model:    "gemini-1.5-flash",
		Timeout:  30 * time.Second,
		CacheTTL: 10 * time.Minute,
	}
}
