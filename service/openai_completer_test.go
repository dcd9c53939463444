package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completion(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestOpenAICompleterFallsBackThroughModels(t *testing.T) {
	config := model.DefaultConfig()
	config.Gateway.Model = "primary"
	config.Gateway.FallbackModels = []string{"empty", "backup"}

	var tried []string
	complete := func(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
		tried = append(tried, string(body.Model))
		require.Len(t, body.Messages, 2)
		switch body.Model {
		case "primary":
			return nil, errors.New("model overloaded")
		case "empty":
			return &openai.ChatCompletion{}, nil
		}
		return completion(`{"response": "hey"}`), nil
	}

	text, err := newOpenAICompleter(complete, config).Complete(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"response": "hey"}`, text)
	assert.Equal(t, []string{"primary", "empty", "backup"}, tried)
}

func TestOpenAICompleterJoinsErrors(t *testing.T) {
	config := model.DefaultConfig()
	config.Gateway.Model = "only"
	failure := errors.New("bad key")
	complete := func(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
		return nil, failure
	}

	_, err := newOpenAICompleter(complete, config).Complete(context.Background(), "system", "prompt")
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "only")
}

func TestOpenAICompleterDefaultModel(t *testing.T) {
	completer := newOpenAICompleter(nil, model.DefaultConfig())
	assert.Equal(t, []string{string(openai.ChatModelGPT4oMini)}, completer.models)
}
