// Package providers selects and constructs a trisync backend from
// configuration. Adapters are enumerated, closed variants; nothing is
// resolved at runtime beyond this switch.
package providers

import (
	"errors"
	"fmt"

	"github.com/notebrook/trisync"
	"github.com/notebrook/trisync/providers/agent"
	"github.com/notebrook/trisync/providers/bedrock"
	"github.com/notebrook/trisync/providers/claude"
	"github.com/notebrook/trisync/providers/ollama"
	"github.com/notebrook/trisync/providers/openai"
)

// Factory errors. Callers need to tell an invalid configuration apart from
// an identifier this build recognizes but does not ship an adapter for.
var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrUnsupportedProvider = errors.New("provider not supported in this build")
)

// recognized identifiers without an adapter here. Building them in is a
// compile-time decision, not a runtime module load.
var unsupported = map[string]bool{
	"gemini": true,
	"azure":  true,
}

// Config names a provider and carries the credentials and endpoints each
// adapter needs. Unused fields are ignored.
type Config struct {
	// Provider is one of "agent", "claude", "bedrock", "openai",
	// "ollama".
	Provider string

	ClaudeAPIKey string
	ClaudeModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	BedrockRegion    string
	BedrockAccessKey string
	BedrockSecretKey string
	BedrockModel     string

	OllamaURL   string
	OllamaModel string

	AgentBinary string
	AgentArgs   []string

	// Options wrap the request pipeline (retry, timeout, ...).
	Options []trisync.Option
}

// New constructs the configured provider. Misconfiguration (an unknown
// identifier, a missing mandatory credential) fails here, never at sync
// time.
func New(cfg Config) (trisync.Provider, error) {
	completer, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	return trisync.NewProvider(completer, cfg.Options...), nil
}

func newBackend(cfg Config) (trisync.Completer, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(claude.Config{
			APIKey: cfg.ClaudeAPIKey,
			Model:  cfg.ClaudeModel,
		})
	case "openai":
		return openai.New(openai.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
	case "bedrock":
		return bedrock.New(bedrock.Config{
			Region:    cfg.BedrockRegion,
			AccessKey: cfg.BedrockAccessKey,
			SecretKey: cfg.BedrockSecretKey,
			Model:     cfg.BedrockModel,
		})
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL: cfg.OllamaURL,
			Model:   cfg.OllamaModel,
		})
	case "agent":
		return agent.New(agent.Config{
			Binary: cfg.AgentBinary,
			Args:   cfg.AgentArgs,
		})
	default:
		if unsupported[cfg.Provider] {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
