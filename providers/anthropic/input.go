package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/diepdo1810/toolbridge"
)

// convertMessages splits the conversation into the system blocks and
// turn-taking messages the Messages API expects. Tool-role entries become
// user turns carrying a tool_result block keyed by the originating call.
func convertMessages(msgs []toolbridge.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam

	for _, msg := range msgs {
		switch msg.Role {
		case toolbridge.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case toolbridge.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case toolbridge.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(assistantBlocks(msg)...))
		case toolbridge.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: msg.ToolCallID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
					},
				},
			}))
		}
	}
	return system, out
}

func assistantBlocks(msg toolbridge.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    tc.ID,
				Name:  tc.Name,
				Input: json.RawMessage(tc.Arguments),
			},
		})
	}
	if len(blocks) == 0 {
		blocks = append(blocks, anthropic.NewTextBlock(""))
	}
	return blocks
}

// convertTools maps catalogue functions to Messages API tool params.
// An empty catalogue yields nil so the tools parameter is omitted upstream.
func convertTools(fns []toolbridge.FunctionDef) []anthropic.ToolUnionParam {
	if len(fns) == 0 {
		return nil
	}
	tools := make([]anthropic.ToolUnionParam, 0, len(fns))
	for _, fn := range fns {
		schema := anthropic.ToolInputSchemaParam{}
		if props, ok := fn.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if required, ok := fn.Parameters["required"].([]any); ok {
			for _, r := range required {
				if s, ok := r.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        fn.Name,
				Description: anthropic.String(fn.Description),
				InputSchema: schema,
			},
		})
	}
	return tools
}
