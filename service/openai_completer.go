package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var ErrEmptyCompletion = errors.New("model returned no choices")

type chatCompletionFunc func(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)

// OpenAICompleter talks to OpenAI or any server speaking its chat completions API, such as Groq.
// Models are tried in order until one answers.
type OpenAICompleter struct {
	complete    chatCompletionFunc
	models      []string
	temperature float64
	maxTokens   int
}

func NewOpenAICompleter(config model.Config, baseURL string) *OpenAICompleter {
	opts := []option.RequestOption{option.WithMaxRetries(1)}
	if key := config.GatewayAPIKey(); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if config.Gateway.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Gateway.Timeout))
	}
	client := openai.NewClient(opts...)
	return newOpenAICompleter(client.Chat.Completions.New, config)
}

func newOpenAICompleter(complete chatCompletionFunc, config model.Config) *OpenAICompleter {
	models := make([]string, 0, 1+len(config.Gateway.FallbackModels))
	if config.Gateway.Model != "" {
		models = append(models, config.Gateway.Model)
	}
	models = append(models, config.Gateway.FallbackModels...)
	if len(models) == 0 {
		models = append(models, string(openai.ChatModelGPT4oMini))
	}
	return &OpenAICompleter{
		complete:    complete,
		models:      models,
		temperature: config.Gateway.Temperature,
		maxTokens:   config.Gateway.MaxTokens,
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, system string, prompt string) (string, error) {
	var errs []error
	for _, name := range o.models {
		params := openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			},
			Model:       openai.ChatModel(name),
			Temperature: openai.Float(o.temperature),
		}
		if o.maxTokens > 0 {
			params.MaxTokens = openai.Int(int64(o.maxTokens))
		}
		completion, err := o.complete(ctx, params)
		if err == nil && len(completion.Choices) == 0 {
			err = ErrEmptyCompletion
		}
		if err != nil {
			slog.Warn("completion failed", "model", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return completion.Choices[0].Message.Content, nil
	}
	return "", errors.Join(errs...)
}
