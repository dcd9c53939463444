package service

import (
	"testing"

	"github.com/aiwolfdial/whos-the-ai/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLangchainCompleter(t *testing.T) {
	config := model.DefaultConfig()
	config.Gateway.Provider = "Ollama"
	config.Gateway.Model = "llama3"
	completer, err := NewLangchainCompleter(config)
	require.NoError(t, err)
	assert.Len(t, completer.callOpts, 2)

	config.Gateway.MaxTokens = 0
	assert.Len(t, buildCallOpts(config), 1)

	config.Gateway.Provider = ProviderOpenAI
	_, err = NewLangchainCompleter(config)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
