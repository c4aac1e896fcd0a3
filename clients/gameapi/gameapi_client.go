package gameapi

import (
	"time"

	"github.com/frightfate/frightfate/clients"
)

// GameAPIClient talks to the FrightFate collaborator service over JSON
// HTTP. Every non-success status or malformed body surfaces as an error;
// callers apply their own fallbacks.
type GameAPIClient struct {
	*clients.BaseClient
}

func NewGameAPIClient(baseURL string) *GameAPIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &GameAPIClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
	client.SetHeader("Accept", jsonContentType)
	client.SetHeader("Content-Type", jsonContentType)
	return client
}

// NewGameAPIClientWithTimeout creates a client with a custom request
// timeout, typically from config.
func NewGameAPIClientWithTimeout(baseURL string, timeout time.Duration) *GameAPIClient {
	client := NewGameAPIClient(baseURL)
	client.SetTimeout(timeout)
	return client
}
