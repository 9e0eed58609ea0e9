package chatcompletion

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/diepdo1810/toolbridge"
)

// BuildParams converts a toolbridge completion request to OpenAI chat
// completion params. When the request carries no tools the tools parameter
// is left unset entirely; sending an empty list is rejected by some
// backends.
func BuildParams(req toolbridge.CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{Model: req.Model}

	for _, msg := range req.Messages {
		switch msg.Role {
		case toolbridge.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case toolbridge.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		case toolbridge.RoleAssistant:
			params.Messages = append(params.Messages, convertAssistantMessage(msg))
		case toolbridge.RoleTool:
			params.Messages = append(params.Messages, openai.ToolMessage(msg.Content, msg.ToolCallID))
		}
	}

	for _, fn := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        fn.Name,
			Description: openai.String(fn.Description),
			Parameters:  shared.FunctionParameters(fn.Parameters),
		}))
	}
	if len(params.Tools) > 0 {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		}
		params.ParallelToolCalls = openai.Bool(true)
	}

	return params
}

func convertAssistantMessage(msg toolbridge.Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{
		Role: "assistant",
	}
	if msg.Content != "" {
		assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(msg.Content),
		}
	}
	for _, tc := range msg.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}
