// internal/services/chat/intent-router/config.go
package intentrouter

import "time"

type Config struct {
	// Timeout bounds one routed message, including the delegate call.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 35 * time.Second,
	}
}
