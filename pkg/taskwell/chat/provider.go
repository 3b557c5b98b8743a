package chat

import (
	"context"
	"fmt"

	"github.com/taskwell/taskwell/pkg/taskwell/config"
)

// Message is one turn of conversation history as seen by the client
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ToolDef describes a callable tool in provider-neutral terms
type ToolDef struct {
	Name        string
	Description string
	// InputSchema holds JSON-schema property definitions
	InputSchema map[string]interface{}
	Required    []string
}

// ToolExecutor runs a named tool and returns its JSON-encoded result. isError
// reports that the result describes a failure the model should relay.
type ToolExecutor func(ctx context.Context, name string, params map[string]interface{}) (result string, isError bool)

// Provider is the AI capability interface. Implementations run the full
// tool-use loop internally, invoking exec for each tool call the model
// requests, and return the final assistant text.
type Provider interface {
	Chat(ctx context.Context, history []Message, userMessage string, exec ToolExecutor) (string, error)
}

// maxToolRounds bounds the tool-use loop per chat turn
const maxToolRounds = 5

// NewProvider selects the provider implementation once at startup from
// configuration. There is no runtime auto-detection.
func NewProvider(cfg config.ChatConfig, tools []ToolDef) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("chat provider %q requires an API key", cfg.Provider)
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens, tools), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// systemPrompt frames the assistant for every provider
const systemPrompt = `You are a helpful task management assistant. You help users manage their todo list through natural conversation.

You can create, list, update, delete, and search tasks using the available tools. When a user asks about their tasks, use the appropriate tool rather than guessing. Keep replies short and friendly. When a tool fails, apologize and relay the problem in plain language.`
