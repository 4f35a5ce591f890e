package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"receptomat/internal/core/ai/openrouter"
	"receptomat/internal/core/ai/provider"
	"receptomat/internal/core/ai/queue"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/mocks"
	"receptomat/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AI.Provider = "openrouter"
	cfg.AI.Model = "m"
	cfg.Queue.Workers = 1
	cfg.Queue.MaxSize = 1
	cfg.Server.RoundTimeout = time.Second
	return cfg
}

func TestNewProvider(t *testing.T) {
	cfg := testConfig()

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &openrouter.Client{}, p)

	for _, name := range []string{"openai", "ollama"} {
		cfg.AI.Provider = name
		p, err = NewProvider(cfg)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	cfg.AI.Provider = "gemini"
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}

func TestServiceForwardsChunksAndReleasesSlot(t *testing.T) {
	common.InitTestLogger()
	cfg := testConfig()
	q := queue.NewManager(cfg)

	p := mocks.NewMockStreamProvider(t)
	p.On("Name").Return("mock")
	p.On("GetModel").Return("m").Maybe()
	p.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.StreamChunks(nil, "a", "b", "c")).Twice()

	svc := NewService(cfg, p, q)

	for i := 0; i < 2; i++ {
		var got string
		err := svc.GenerateStream(context.Background(), provider.NewRequest("", "x"), func(c string) error {
			got += c
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	}
	assert.Equal(t, 0, q.GetQueueStatus().Active)
	assert.Equal(t, 2, q.GetQueueStatus().ProcessedCount)
}

func TestServicePropagatesError(t *testing.T) {
	common.InitTestLogger()
	cfg := testConfig()
	boom := errors.New("connection reset")

	p := mocks.NewMockStreamProvider(t)
	p.On("Name").Return("mock")
	p.On("GetModel").Return("m")
	p.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.StreamChunks(boom, "partial"))

	svc := NewService(cfg, p, nil)
	err := svc.GenerateStream(context.Background(), provider.NewRequest("", "x"), func(string) error { return nil })
	assert.ErrorIs(t, err, boom)
}
