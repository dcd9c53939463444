package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

// LangchainCompleter drives the providers that do not speak the OpenAI API.
type LangchainCompleter struct {
	llm      llms.Model
	callOpts []llms.CallOption
}

func NewLangchainCompleter(config model.Config) (*LangchainCompleter, error) {
	var (
		llm llms.Model
		err error
	)
	switch strings.ToLower(config.Gateway.Provider) {
	case ProviderOllama:
		url := config.Gateway.BaseURL
		if url == "" {
			url = defaultOllamaURL
		}
		llm, err = ollama.New(ollama.WithModel(config.Gateway.Model), ollama.WithServerURL(url))
	case ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithModel(config.Gateway.Model)}
		if key := config.GatewayAPIKey(); key != "" {
			opts = append(opts, anthropic.WithToken(key))
		}
		llm, err = anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, config.Gateway.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", config.Gateway.Provider, err)
	}
	return &LangchainCompleter{llm: llm, callOpts: buildCallOpts(config)}, nil
}

func buildCallOpts(config model.Config) []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(config.Gateway.Temperature)}
	if config.Gateway.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(config.Gateway.MaxTokens))
	}
	return opts
}

func (l *LangchainCompleter) Complete(ctx context.Context, system string, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	response, err := l.llm.GenerateContent(ctx, messages, l.callOpts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return response.Choices[0].Content, nil
}
