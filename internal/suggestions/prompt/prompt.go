package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/todosuggest/relay/internal/suggestions/domain"
)

// SystemInstruction constrains the model to a single bare to-do item.
const SystemInstruction = "You are a helpful assistant. Your only job is to suggest a single, short, common to-do list item. " +
	"Make it a simple action. Examples: 'Buy milk', 'Walk the dog', 'Pay electricity bill', 'Call mom'. " +
	"Do not add any preamble or extra text. Just return the task text."

const userQueryFormat = "My current tasks are: %s. Suggest one new, simple task."

// Prompt is what gets sent upstream.
type Prompt struct {
	System string
	User   string
}

func UserQuery(tasks string) string {
	return fmt.Sprintf(userQueryFormat, tasks)
}

func Build(req domain.SuggestionRequest) Prompt {
	tasks := req.ExistingTasks
	if tasks == "" {
		tasks = domain.DefaultExistingTasks
	}
	return Prompt{
		System: SystemInstruction,
		User:   UserQuery(tasks),
	}
}

// ParseRequest reads existingTasks from a JSON body. Only a syntactically
// broken body is an error; anything else without a truthy existingTasks
// falls back to "none".
func ParseRequest(body []byte) (domain.SuggestionRequest, error) {
	req := domain.SuggestionRequest{ExistingTasks: domain.DefaultExistingTasks}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return req, nil
	}
	if !json.Valid(trimmed) {
		return req, domain.ErrInvalidRequestBody
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		// valid JSON, just not an object
		return req, nil
	}

	raw, ok := fields["existingTasks"]
	if !ok {
		return req, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return req, nil
	}
	if text, ok := taskText(v); ok {
		req.ExistingTasks = text
	}
	return req, nil
}

// taskText renders a decoded JSON value as task text. ok is false for
// falsy values.
func taskText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case bool:
		return "true", t
	case float64:
		if t == 0 {
			return "", false
		}
		return formatNumber(t), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := taskText(item)
			if !ok {
				s = falsyText(item)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func falsyText(v any) string {
	switch t := v.(type) {
	case bool:
		return "false"
	case float64:
		return formatNumber(t)
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
