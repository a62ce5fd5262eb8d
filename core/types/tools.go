package types

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ToolArgs is the decoded argument object of a tool call. The model's
// arguments arrive as a JSON string and are never trusted beyond what a
// catalog lookup confirms.
type ToolArgs map[string]interface{}

func (a ToolArgs) Read(s string) error {
	return json.Unmarshal([]byte(s), &a)
}

func (a ToolArgs) String() string {
	b, _ := json.Marshal(a)
	return string(b)
}

func (a ToolArgs) Unmarshal(v interface{}) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ToolCallRequest is a structured action request emitted by the
// completion provider instead of (or alongside) free text.
type ToolCallRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ToolResultStatus string

const (
	ToolSuccess         ToolResultStatus = "success"
	ToolValidationError ToolResultStatus = "validation_error"
	ToolFailed          ToolResultStatus = "failed"
)

// ToolCallResult is what a tool execution hands back to the model.
// Message is model-facing text; Payload carries structured extras such
// as payment links or image references.
type ToolCallResult struct {
	Status   ToolResultStatus       `json:"status"`
	RecordID string                 `json:"record_id,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Reason   Reason                 `json:"reason,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// ToModelJSON renders the result the way the model consumes it.
func (r ToolCallResult) ToModelJSON() string {
	b, _ := json.Marshal(r)
	return string(b)
}

// ToolDefinition describes one tool the model may request.
type ToolDefinition struct {
	Name        string
	Description string
	Properties  map[string]jsonschema.Definition
	Required    []string
}

func (d ToolDefinition) ToFunctionDefinition() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        d.Name,
		Description: d.Description,
		Parameters: jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: d.Properties,
			Required:   d.Required,
		},
	}
}

type ToolDefinitions []ToolDefinition

func (ds ToolDefinitions) ToTools() []openai.Tool {
	tools := []openai.Tool{}
	for _, d := range ds {
		tools = append(tools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: d.ToFunctionDefinition(),
		})
	}
	return tools
}

func (ds ToolDefinitions) Find(name string) *ToolDefinition {
	for i := range ds {
		if ds[i].Name == name {
			return &ds[i]
		}
	}
	return nil
}
