package openaillm

import (
	"context"
	"errors"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/meridianhomes/homechat/internal/rag/llm"
	"github.com/meridianhomes/homechat/pkg/applog"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *applog.Logger
var openaiClient *llmClient
var once sync.Once

// GetOpenAIClient is the alternate generation backend, selected by
// config.LLMBackend.
func GetOpenAIClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = applog.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("Missing OpenAI API key")
			return
		}
		openaiClient = &llmClient{
			api:       openai.NewClient(option.WithAPIKey(apikey)),
			modelName: modelName,
		}
		logger.Info("OpenAI client created", "model", modelName)
	})

	if openaiClient == nil {
		return nil
	}
	return openaiClient
}

func (c *llmClient) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if opts.System != "" {
		messages = append(messages, openai.SystemMessage(opts.System))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(float64(opts.Temperature)),
		MaxTokens:   openai.Int(int64(opts.MaxOutputTokens)),
	})
	if err != nil {
		logger.Error("OpenAI completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
