package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/endoscribe/backend/internal/config"
	sessionmodel "github.com/endoscribe/backend/internal/model/session"
)

// Usage carries token accounting reported by the model provider.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// ClassifyRequest bundles everything the classification oracle needs:
// the encoded frame plus the session context that grounds the label.
type ClassifyRequest struct {
	ImageB64      string
	Conversation  string
	ImagesSummary string
	TextHint      string
}

// Classification is the oracle's verdict for one frame.
type Classification struct {
	Label       string
	Reasoning   string
	Description string
	Latency     float64
	Usage       Usage
}

// Note is a generated operative note plus its token usage.
type Note struct {
	Markdown string `json:"markdown"`
	Usage    Usage  `json:"usage"`
}

// Service wraps a single chat model behind the classification and
// operative-note oracles.
type Service struct {
	chatModel   model.ChatModel
	opnoteChain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{guidance}"),
		schema.UserMessage("{content}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile opnote chain: %w", err)
	}

	return &Service{chatModel: chatModel, opnoteChain: runnable}, nil
}

// ClassifyImage labels one frame against the session context. The image
// travels as a data URL in a multimodal message; prompt templates cannot
// carry image parts, so this path calls the model directly.
func (s *Service) ClassifyImage(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	messages := []*schema.Message{
		schema.SystemMessage(classifierSystemPrompt()),
		schema.UserMessage(classifierUserPrompt(req.Conversation, req.ImagesSummary)),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:    "data:image/jpeg;base64," + req.ImageB64,
						Detail: schema.ImageURLDetailAuto,
					},
				},
			},
		},
	}
	if hint := strings.TrimSpace(req.TextHint); hint != "" {
		messages = append(messages, schema.UserMessage("Clinician note: "+hint))
	}

	start := time.Now()
	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("image classification failed: %w", err)
	}
	latency := time.Since(start).Seconds()

	payload, err := parseClassifierOutput(response.Content)
	if err != nil {
		return nil, fmt.Errorf("image classification failed: %w", err)
	}

	result := &Classification{
		Label:       normalizeLabel(payload.Label),
		Reasoning:   strings.TrimSpace(payload.Reasoning),
		Description: strings.TrimSpace(payload.Description),
		Latency:     latency,
		Usage:       extractUsage(response),
	}

	log.Printf("[ai] classified frame label=%s latency=%.2fs", result.Label, result.Latency)
	return result, nil
}

// GenerateNote authors a Markdown operative note from the session's
// conversation and classified images.
func (s *Service) GenerateNote(ctx context.Context, messages []sessionmodel.Message, images []sessionmodel.Image, baseNote string) (*Note, error) {
	content := noteContent(messages, images, baseNote)

	response, err := s.opnoteChain.Invoke(ctx, map[string]any{
		"system":   opnoteSystemPrompt(),
		"guidance": opnoteGuidancePrompt(),
		"content":  content,
	})
	if err != nil {
		return nil, fmt.Errorf("opnote generation failed: %w", err)
	}

	markdown := strings.TrimSpace(response.Content)
	log.Printf("[ai] generated opnote length=%d images=%d", len(markdown), len(images))

	return &Note{Markdown: markdown, Usage: extractUsage(response)}, nil
}

func noteContent(messages []sessionmodel.Message, images []sessionmodel.Image, baseNote string) string {
	var builder strings.Builder
	if note := strings.TrimSpace(baseNote); note != "" {
		builder.WriteString("Existing operative note draft:\n")
		builder.WriteString(note)
		builder.WriteString("\n\n")
	}
	builder.WriteString("Conversation log:\n")
	builder.WriteString(conversationBlock(messages))
	builder.WriteString("\n\nImages and annotations:\n")
	builder.WriteString(imagesBlock(images))
	return builder.String()
}

func conversationBlock(messages []sessionmodel.Message) string {
	if len(messages) == 0 {
		return "No clinician messages recorded."
	}
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content))
	}
	return strings.Join(lines, "\n")
}

func imagesBlock(images []sessionmodel.Image) string {
	if len(images) == 0 {
		return "No images classified."
	}
	rows := make([]string, 0, len(images))
	for _, img := range images {
		label := img.Label
		if label == "" {
			label = "Unlabeled site"
		}
		description := img.Description
		if description == "" {
			description = "No description."
		}
		reasoning := img.Reasoning
		if reasoning == "" {
			reasoning = "No reasoning provided."
		}
		rows = append(rows, fmt.Sprintf("%d. %s - %s | Reasoning: %s", img.ID, label, description, reasoning))
	}
	return strings.Join(rows, "\n")
}
