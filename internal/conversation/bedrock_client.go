package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient drives chat completions through the Bedrock Converse API.
type BedrockClient struct {
	api bedrockConverseAPI
}

func NewBedrockClient(api bedrockConverseAPI) *BedrockClient {
	if api == nil {
		panic("conversation: bedrock converse client cannot be nil")
	}
	return &BedrockClient{api: api}
}

func (c *BedrockClient) Provider() string { return "bedrock" }

func (c *BedrockClient) Chat(ctx context.Context, req LLMRequest) (*LLMResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("conversation: bedrock model id is required")
	}

	systemBlocks := make([]brtypes.SystemContentBlock, 0, len(req.System))
	for _, block := range req.System {
		if strings.TrimSpace(block) == "" {
			continue
		}
		systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: block})
	}

	messages, err := toBedrockMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	toolConfig, err := toBedrockToolConfig(req)
	if err != nil {
		return nil, err
	}

	inference := &brtypes.InferenceConfiguration{}
	if req.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(int32(req.MaxTokens))
	}
	if req.Temperature >= 0 {
		inference.Temperature = aws.Float32(req.Temperature)
	}

	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(req.Model),
		System:          systemBlocks,
		Messages:        messages,
		ToolConfig:      toolConfig,
		InferenceConfig: inference,
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: bedrock converse: %w", err)
	}

	return fromBedrockOutput(out)
}

func toBedrockMessages(msgs []ChatMessage) ([]brtypes.Message, error) {
	var out []brtypes.Message
	for _, msg := range msgs {
		switch msg.Role {
		case RoleUser:
			out = append(out, brtypes.Message{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: msg.Content},
				},
			})
		case RoleAssistant:
			var content []brtypes.ContentBlock
			if strings.TrimSpace(msg.Content) != "" {
				content = append(content, &brtypes.ContentBlockMemberText{Value: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input, err := rawToDocument(tc.Arguments)
				if err != nil {
					return nil, err
				}
				content = append(content, &brtypes.ContentBlockMemberToolUse{
					Value: brtypes.ToolUseBlock{
						ToolUseId: aws.String(tc.ID),
						Name:      aws.String(tc.Name),
						Input:     input,
					},
				})
			}
			out = append(out, brtypes.Message{Role: brtypes.ConversationRoleAssistant, Content: content})
		case RoleTool:
			// Converse carries tool results as user-role content blocks.
			out = append(out, brtypes.Message{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberToolResult{
						Value: brtypes.ToolResultBlock{
							ToolUseId: aws.String(msg.ToolCallID),
							Content: []brtypes.ToolResultContentBlock{
								&brtypes.ToolResultContentBlockMemberText{Value: msg.Content},
							},
						},
					},
				},
			})
		default:
			return nil, fmt.Errorf("conversation: unsupported role %q", msg.Role)
		}
	}
	return out, nil
}

func toBedrockToolConfig(req LLMRequest) (*brtypes.ToolConfiguration, error) {
	if len(req.Tools) == 0 {
		return nil, nil
	}
	cfg := &brtypes.ToolConfiguration{}
	for _, def := range req.Tools {
		schema, err := rawToDocument(def.InputSchema)
		if err != nil {
			return nil, err
		}
		cfg.Tools = append(cfg.Tools, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(def.Name),
				Description: aws.String(def.Description),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{Value: schema},
			},
		})
	}
	return cfg, nil
}

func fromBedrockOutput(out *bedrockruntime.ConverseOutput) (*LLMResponse, error) {
	if out == nil {
		return nil, errors.New("conversation: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return nil, errors.New("conversation: bedrock response did not include a message output")
	}

	resp := &LLMResponse{StopReason: StopEndTurn}
	var text strings.Builder
	for _, block := range msgOut.Value.Content {
		switch v := block.(type) {
		case *brtypes.ContentBlockMemberText:
			text.WriteString(v.Value)
		case *brtypes.ContentBlockMemberToolUse:
			args, err := documentToRaw(v.Value.Input)
			if err != nil {
				return nil, err
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        aws.ToString(v.Value.ToolUseId),
				Name:      aws.ToString(v.Value.Name),
				Arguments: args,
			})
		}
	}
	resp.Text = strings.TrimSpace(text.String())
	if out.StopReason == brtypes.StopReasonToolUse || len(resp.ToolCalls) > 0 {
		resp.StopReason = StopToolUse
	}
	if out.Usage != nil {
		resp.Usage = Usage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
		}
	}
	return resp, nil
}

func rawToDocument(raw json.RawMessage) (document.Interface, error) {
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("conversation: decode tool payload: %w", err)
		}
	}
	if decoded == nil {
		decoded = map[string]any{}
	}
	return document.NewLazyDocument(decoded), nil
}

func documentToRaw(doc document.Interface) (json.RawMessage, error) {
	if doc == nil {
		return json.RawMessage(`{}`), nil
	}
	raw, err := doc.MarshalSmithyDocument()
	if err != nil {
		return nil, fmt.Errorf("conversation: encode tool payload: %w", err)
	}
	return json.RawMessage(raw), nil
}
