package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/aiwolfdial/whos-the-ai/util"
)

var (
	ErrNoEligible      = errors.New("vote request has no eligible targets")
	ErrUnknownProvider = errors.New("unknown gateway provider")
)

const (
	ProviderCanned           = "canned"
	ProviderOpenAI           = "openai"
	ProviderGroq             = "groq"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderOllama           = "ollama"
	ProviderAnthropic        = "anthropic"
	ProviderRemote           = "remote"

	groqBaseURL = "https://api.groq.com/openai/v1"
)

// Gateway is what the game needs from a reply source. It mirrors logic.Gateway so the
// server can hand any implementation straight to a game.
type Gateway interface {
	ChatReply(ctx context.Context, request model.ChatRequest) (model.ChatResponse, error)
	VoteDecision(ctx context.Context, request model.VoteRequest) (model.VoteResponse, error)
}

// NewGateway builds the gateway named by config.Gateway.Provider.
func NewGateway(config model.Config, rnd util.Rand) (Gateway, error) {
	provider := strings.ToLower(config.Gateway.Provider)
	var (
		completer Completer
		err       error
	)
	switch provider {
	case "", ProviderCanned:
		slog.Info("using canned gateway")
		return NewCannedGateway(rnd), nil
	case ProviderRemote:
		if config.Gateway.BaseURL == "" {
			return nil, fmt.Errorf("%w: remote gateway needs base_url", ErrUnknownProvider)
		}
		slog.Info("using remote gateway", "url", config.Gateway.BaseURL)
		return NewRemoteGateway(config.Gateway.BaseURL, &http.Client{Timeout: config.Gateway.Timeout}, rnd), nil
	case ProviderOpenAI:
		completer = NewOpenAICompleter(config, "")
	case ProviderGroq:
		completer = NewOpenAICompleter(config, groqBaseURL)
	case ProviderOpenAICompatible:
		if config.Gateway.BaseURL == "" {
			return nil, fmt.Errorf("%w: openai-compatible gateway needs base_url", ErrUnknownProvider)
		}
		completer = NewOpenAICompleter(config, config.Gateway.BaseURL)
	case ProviderOllama, ProviderAnthropic:
		completer, err = NewLangchainCompleter(config)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, config.Gateway.Provider)
	}
	slog.Info("using llm gateway", "provider", provider, "model", config.Gateway.Model)
	return NewLLMGateway(completer, rnd), nil
}
