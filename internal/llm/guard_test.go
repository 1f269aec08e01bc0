package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeCompleter) CompleteStream(ctx context.Context, system, user string, onChunk func(string)) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	onChunk(f.response)
	return nil
}

func TestGuardPassesThrough(t *testing.T) {
	fake := &fakeCompleter{response: "hello"}
	guard := NewGuard(fake, 0)

	got, err := guard.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	var streamed string
	err = guard.CompleteStream(context.Background(), "sys", "user", func(s string) { streamed += s })
	require.NoError(t, err)
	assert.Equal(t, "hello", streamed)
}

func TestGuardRateLimit(t *testing.T) {
	fake := &fakeCompleter{response: "ok"}
	// 10 rpm with burst 1: the second immediate call must be rejected.
	guard := NewGuard(fake, 10)

	_, err := guard.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)

	_, err = guard.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Equal(t, 1, fake.calls)
}

func TestGuardBreakerOpensAfterFailures(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream down")}
	guard := NewGuard(fake, 0)

	for i := 0; i < 5; i++ {
		_, err := guard.Complete(context.Background(), "sys", "user")
		assert.Error(t, err)
	}

	_, err := guard.Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, apperrors.ErrCompletionUnavailable)
	// The open breaker never reached the upstream.
	assert.Equal(t, 5, fake.calls)
}
