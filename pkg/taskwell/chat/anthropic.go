package chat

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider talks to the Anthropic Messages API with tool use
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	tools     []anthropic.ToolUnionParam
}

// NewAnthropicProvider builds a provider for the given model and tool set
func NewAnthropicProvider(apiKey, model string, maxTokens int, tools []ToolDef) *AnthropicProvider {
	toolParams := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.InputSchema,
				Required:   t.Required,
			},
		}
		toolParams[i] = anthropic.ToolUnionParam{OfTool: &tool}
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		tools:     toolParams,
	}
}

// Chat runs the message/tool-result loop until the model stops requesting
// tools or the round limit is reached.
func (p *AnthropicProvider) Chat(ctx context.Context, history []Message, userMessage string, exec ToolExecutor) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	for round := 0; round < maxToolRounds; round++ {
		message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     p.model,
			MaxTokens: p.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  messages,
			Tools:     p.tools,
		})
		if err != nil {
			return "", err
		}

		var text string
		var toolResults []anthropic.ContentBlockParamUnion
		for _, blk := range message.Content {
			switch block := blk.AsAny().(type) {
			case anthropic.TextBlock:
				text += block.Text
			case anthropic.ToolUseBlock:
				var params map[string]interface{}
				if err := json.Unmarshal([]byte(block.JSON.Input.Raw()), &params); err != nil {
					params = map[string]interface{}{}
				}
				result, isError := exec(ctx, block.Name, params)
				toolResults = append(toolResults, anthropic.NewToolResultBlock(block.ID, result, isError))
			}
		}

		if len(toolResults) == 0 {
			return text, nil
		}

		messages = append(messages, message.ToParam())
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return "I wasn't able to finish that request. Please try rephrasing it.", nil
}
