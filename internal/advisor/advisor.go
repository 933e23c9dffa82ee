// File path: internal/advisor/advisor.go

// Package advisor produces LLM-generated commentary around a scan: the
// detection criteria text for the dataset's columns and a short
// narrative over the per-category counts. The output is display-only;
// the rule engine never reads it.
package advisor

import (
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/veyra/billscope/internal/advisor/providers"
	"github.com/veyra/billscope/internal/common"
)

type Message = providers.Message

type Provider = providers.Provider

// NewProvider selects a chat provider from the environment: OpenAI when
// OPENAI_API_KEY is set, otherwise Ollama when BILLSCOPE_OLLAMA_MODEL
// is set, otherwise nil (advisory disabled).
func NewProvider() Provider {
	logger := common.Logger()
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
			timeout, err := time.ParseDuration(timeoutStr)
			if err != nil {
				logger.Warn("advisor: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
			} else {
				opts = append(opts, option.WithRequestTimeout(timeout))
			}
		}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("advisor: using custom OpenAI endpoint", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		}
		return providers.NewOpenAIProvider(openai.NewClient(opts...))
	}
	if model := strings.TrimSpace(os.Getenv("BILLSCOPE_OLLAMA_MODEL")); model != "" {
		provider, err := providers.NewOllamaProvider(model, os.Getenv("BILLSCOPE_OLLAMA_HOST"))
		if err != nil {
			logger.Warn("advisor: ollama unavailable, advisory disabled", "error", err)
			return nil
		}
		return provider
	}
	logger.Debug("advisor: no provider configured, advisory disabled")
	return nil
}
