package vkid

import "time"

const (
	// DefaultBaseURL is the VK API method endpoint root
	DefaultBaseURL = "https://api.vk.com/method"

	// APIVersion is the users.get contract the client is written against
	APIVersion = "5.131"
)

// Config represents the configuration for the VK API client
type Config struct {
	// BaseURL overrides DefaultBaseURL, used by tests
	BaseURL string

	// Timeout bounds every API call
	Timeout time.Duration
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}
