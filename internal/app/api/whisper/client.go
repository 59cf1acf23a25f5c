package whisper

import (
	"os"
	"sync"

	"github.com/sashabaranov/go-openai"
)

var (
	once      sync.Once
	singleton *openai.Client
)

// GetClient returns the shared OpenAI client, honoring OPENAI_BASE_URL for
// self-hosted whisper deployments that speak the OpenAI audio API.
func GetClient() *openai.Client {
	once.Do(func() {
		token, ok := os.LookupEnv("OPENAI_API_KEY")
		if !ok {
			panic("OPENAI_API_KEY environment variable not set")
		}
		config := openai.DefaultConfig(token)
		if baseURL, ok := os.LookupEnv("OPENAI_BASE_URL"); ok && baseURL != "" {
			config.BaseURL = baseURL
		}
		singleton = openai.NewClientWithConfig(config)
	})

	return singleton
}
