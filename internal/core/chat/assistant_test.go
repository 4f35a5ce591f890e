package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"receptomat/internal/core/ai/provider"
	"receptomat/internal/mocks"
	"receptomat/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAskStreamsAccumulatedAnswer(t *testing.T) {
	common.InitTestLogger()
	p := mocks.NewMockStreamProvider(t)
	p.On("GenerateStream", mock.Anything, mock.MatchedBy(func(r *provider.Request) bool {
		return len(r.Messages) == 2 &&
			strings.Contains(r.Messages[0].Content, "Receptomat Bot") &&
			r.Messages[1].Content == `Pitanje korisnika: "Čime da zamenim jaja?"`
	}), mock.Anything).Return(mocks.StreamChunks(nil, "Probaj ", "bananu ", "ili laneno seme! ")).Once()

	var seen []string
	answer, err := NewAssistant(p).Ask(context.Background(), "  Čime da zamenim jaja?\n", func(acc string) {
		seen = append(seen, acc)
	})
	require.NoError(t, err)

	assert.Equal(t, "Probaj bananu ili laneno seme!", answer)
	assert.Equal(t, []string{"Probaj ", "Probaj bananu ", "Probaj bananu ili laneno seme! "}, seen)
}

func TestAskValidation(t *testing.T) {
	p := mocks.NewMockStreamProvider(t)
	a := NewAssistant(p)

	_, err := a.Ask(context.Background(), "   ", nil)
	assert.True(t, common.IsValidationError(err))

	_, err = a.Ask(context.Background(), strings.Repeat("ž", MaxQuestionLength+1), nil)
	assert.True(t, common.IsValidationError(err))

	p.AssertNotCalled(t, "GenerateStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskFailure(t *testing.T) {
	common.InitTestLogger()
	boom := errors.New("quota exceeded")
	p := mocks.NewMockStreamProvider(t)
	p.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.StreamChunks(boom, "Pro")).Once()
	p.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.StreamChunks(nil, "  \n")).Once()

	a := NewAssistant(p)

	_, err := a.Ask(context.Background(), "Kako da skuvam jaje?", nil)
	assert.ErrorIs(t, err, common.ErrChatFailed)
	assert.ErrorIs(t, err, boom)

	// 空白回答也視為失敗
	_, err = a.Ask(context.Background(), "Kako da skuvam jaje?", nil)
	assert.ErrorIs(t, err, common.ErrChatFailed)
}
