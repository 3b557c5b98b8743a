package chat

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// MockProvider is a deterministic, rule-based provider used in development
// and tests. It understands a handful of phrasings and always produces the
// same tool call for the same input.
type MockProvider struct{}

// NewMockProvider creates the rule-based provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var (
	quotedRe = regexp.MustCompile(`"([^"]+)"`)
	uuidRe   = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// Chat matches the user message against its rules, runs at most one tool,
// and relays the tool's message field.
func (p *MockProvider) Chat(ctx context.Context, history []Message, userMessage string, exec ToolExecutor) (string, error) {
	name, params := p.route(userMessage)
	if name == "" {
		return "I can create, list, update, delete, and search your tasks. Try: add a task \"Buy milk\".", nil
	}

	result, isError := exec(ctx, name, params)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(result), &decoded); err == nil {
		if isError {
			if msg, ok := decoded["error"].(string); ok {
				return "Sorry, that didn't work: " + msg, nil
			}
		}
		if msg, ok := decoded["message"].(string); ok {
			return msg, nil
		}
	}
	if isError {
		return "Sorry, something went wrong talking to your task list.", nil
	}
	return "Done.", nil
}

// route picks a tool and parameters from the raw message text
func (p *MockProvider) route(text string) (string, map[string]interface{}) {
	lower := strings.ToLower(text)
	params := map[string]interface{}{}

	switch {
	case containsAny(lower, "add", "create", "new task", "remind me"):
		title := extractTitle(text)
		if title == "" {
			return "", nil
		}
		params["title"] = title
		if containsAny(lower, "high priority", "urgent", "important") {
			params["priority"] = "high"
		} else if strings.Contains(lower, "low priority") {
			params["priority"] = "low"
		}
		return "create_task", params

	case containsAny(lower, "delete", "remove"):
		if id := uuidRe.FindString(text); id != "" {
			params["task_id"] = id
			return "delete_task", params
		}
		return "", nil

	case containsAny(lower, "complete", "done", "finish"):
		if id := uuidRe.FindString(text); id != "" {
			params["task_id"] = id
			params["status"] = "completed"
			return "update_task", params
		}
		return "", nil

	case containsAny(lower, "search", "find"):
		query := strings.TrimSpace(quotedOrRemainder(text, "search", "find"))
		if query == "" {
			return "", nil
		}
		params["query"] = query
		return "search_tasks", params

	case containsAny(lower, "list", "show", "what are my", "my tasks"):
		if strings.Contains(lower, "pending") {
			params["status"] = "pending"
		} else if strings.Contains(lower, "completed") {
			params["status"] = "completed"
		}
		if strings.Contains(lower, "high priority") {
			params["priority"] = "high"
		}
		return "list_tasks", params
	}

	return "", nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractTitle prefers quoted text, then trims common lead-ins
func extractTitle(text string) string {
	if m := quotedRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	lower := strings.ToLower(text)
	for _, prefix := range []string{"remind me to ", "add a task to ", "add task to ", "create a task to ", "add ", "create "} {
		if idx := strings.Index(lower, prefix); idx >= 0 {
			return strings.TrimSpace(text[idx+len(prefix):])
		}
	}
	return ""
}

func quotedOrRemainder(text string, verbs ...string) string {
	if m := quotedRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	lower := strings.ToLower(text)
	for _, verb := range verbs {
		if idx := strings.Index(lower, verb+" "); idx >= 0 {
			rest := text[idx+len(verb)+1:]
			rest = strings.TrimPrefix(strings.TrimPrefix(rest, "for "), "tasks ")
			return rest
		}
	}
	return ""
}
