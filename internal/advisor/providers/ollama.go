// File path: internal/advisor/providers/ollama.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/veyra/billscope/internal/common"
)

// OllamaProvider backs advisory chat with a local Ollama server, for
// deployments without an OpenAI key.
type OllamaProvider struct {
	llm   *ollama.LLM
	model string
}

// NewOllamaProvider connects to the Ollama server. An empty serverURL
// uses the langchaingo default (http://localhost:11434).
func NewOllamaProvider(model, serverURL string) (*OllamaProvider, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if trimmed := strings.TrimSpace(serverURL); trimmed != "" {
		opts = append(opts, ollama.WithServerURL(trimmed))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("connect ollama: %w", err)
	}
	common.Logger().Info("advisor: Ollama provider configured", "model", model)
	return &OllamaProvider{llm: llm, model: model}, nil
}

func (p *OllamaProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch strings.ToLower(msg.Role) {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	resp, err := p.llm.GenerateContent(ctx, content)
	if err != nil {
		common.Logger().Error("advisor: ollama generation failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}
