package lemma

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexicon/internal/adapter/provider/llm"
	"github.com/heartmarshall/lexicon/internal/domain"
	"github.com/heartmarshall/lexicon/internal/prompt"
)

// ===========================================================================
// Manual mocks
// ===========================================================================

type mockCompleter struct {
	CompleteFunc func(ctx context.Context, req llm.Request) (string, error)
	calls        atomic.Int32
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.calls.Add(1)
	return m.CompleteFunc(ctx, req)
}

// answer returns the same text for every request.
func answer(s string) func(context.Context, llm.Request) (string, error) {
	return func(context.Context, llm.Request) (string, error) { return s, nil }
}

func newTestResolver(c *mockCompleter, cache Cache) *Resolver {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	return NewResolver(discardLogger(), c, prompt.Default(), cache, 2)
}

// ===========================================================================
// Tests
// ===========================================================================

func TestResolve_IdenticalCallsUseCache(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{CompleteFunc: answer("run")}
	r := newTestResolver(m, nil)

	first, err := r.Resolve(context.Background(), "ran", "English", nil)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "ran", "English", nil)
	require.NoError(t, err)

	assert.Equal(t, "run", first)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, m.calls.Load())
}

func TestResolve_MultiWordExpressionPreserved(t *testing.T) {
	t.Parallel()

	var req llm.Request
	m := &mockCompleter{CompleteFunc: func(_ context.Context, r llm.Request) (string, error) {
		req = r
		return "go out with", nil
	}}
	r := newTestResolver(m, nil)

	got, err := r.Resolve(context.Background(), "go out with", "English", nil)
	require.NoError(t, err)
	assert.Equal(t, "go out with", got)

	assert.Equal(t, []string{systemPlain}, req.System)
	assert.Contains(t, req.Prompt, "Input: go out with")
	assert.Empty(t, prompt.Placeholders(req.Prompt))
}

func TestResolve_ContextUsesContextTemplate(t *testing.T) {
	t.Parallel()

	var req llm.Request
	m := &mockCompleter{CompleteFunc: func(_ context.Context, r llm.Request) (string, error) {
		req = r
		return "anrufen", nil
	}}
	r := newTestResolver(m, nil)
	sentence := "Ich rufe dich morgen an."

	got, err := r.Resolve(context.Background(), "rufe", "German", &sentence)
	require.NoError(t, err)
	assert.Equal(t, "anrufen", got)
	assert.Equal(t, []string{systemContext}, req.System)
	assert.Contains(t, req.Prompt, sentence)
}

func TestResolve_DifferentContextsAreSeparateEntries(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache(0)
	m := &mockCompleter{CompleteFunc: answer("bank")}
	r := newTestResolver(m, cache)
	s1 := "We sat on the bank of the river."
	s2 := "I went to the bank to withdraw money."

	_, err := r.Resolve(context.Background(), "bank", "English", &s1)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "bank", "English", &s2)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.EqualValues(t, 2, m.calls.Load())

	// repeating either context is a hit
	_, err = r.Resolve(context.Background(), "bank", "English", &s1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, m.calls.Load())
}

func TestResolve_InvalidLemmaNotCached(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache(0)
	m := &mockCompleter{CompleteFunc: answer("The lemma is run.\nIt is the base form.")}
	r := newTestResolver(m, cache)

	_, err := r.Resolve(context.Background(), "ran", "English", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidLemma)
	assert.Equal(t, 0, cache.Len())

	_, _ = r.Resolve(context.Background(), "ran", "English", nil)
	assert.EqualValues(t, 2, m.calls.Load(), "failed lookups are retried by the caller, not cached")
}

func TestResolve_RemoteFailure(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache(0)
	m := &mockCompleter{CompleteFunc: func(context.Context, llm.Request) (string, error) {
		return "", &domain.RemoteError{Provider: "deepseek", Err: errors.New("connection refused")}
	}}
	r := newTestResolver(m, cache)

	_, err := r.Resolve(context.Background(), "ran", "English", nil)
	assert.ErrorIs(t, err, domain.ErrRemoteCallFailed)
	assert.Equal(t, 0, cache.Len())
}

func TestResolve_Validation(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{CompleteFunc: answer("x")}
	r := newTestResolver(m, nil)

	_, err := r.Resolve(context.Background(), "  ", "English", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = r.Resolve(context.Background(), "ran", "", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualValues(t, 0, m.calls.Load())
}

func TestResolve_ConcurrentSameKeySingleCall(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	m := &mockCompleter{CompleteFunc: func(context.Context, llm.Request) (string, error) {
		<-release
		return "run", nil
	}}
	r := newTestResolver(m, nil)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Resolve(context.Background(), "ran", "English", nil)
			assert.NoError(t, err)
			assert.Equal(t, "run", got)
		}()
	}
	// let the goroutines pile up on the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, m.calls.Load())
}

func TestResolveBatch(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	m := &mockCompleter{CompleteFunc: func(_ context.Context, req llm.Request) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		if strings.Contains(req.Prompt, "Input: bad\n") {
			return "line one\nline two", nil
		}
		return "lemma", nil
	}}
	r := newTestResolver(m, nil)

	res, err := r.ResolveBatch(context.Background(), []string{"a", "b", "c", "d", "bad"}, "English")
	require.NoError(t, err)

	assert.Len(t, res.Lemmas, 4)
	require.Contains(t, res.Failed, "bad")
	assert.ErrorIs(t, res.Failed["bad"], domain.ErrInvalidLemma)
	assert.LessOrEqual(t, peak.Load(), int32(2), "batch must respect the worker bound")
}

func TestResolveBatch_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockCompleter{CompleteFunc: answer("x")}
	r := newTestResolver(m, nil)

	_, err := r.ResolveBatch(ctx, []string{"a", "b"}, "English")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	m := &mockCompleter{CompleteFunc: func(ctx context.Context, _ llm.Request) (string, error) {
		close(started)
		select {
		case <-release:
			return "run", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}}
	r := newTestResolver(m, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctxA, "ran", "English", nil)
		errA <- err
	}()
	<-started

	type result struct {
		lemma string
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := r.Resolve(context.Background(), "ran", "English", nil)
		resB <- result{v, err}
	}()
	// let B join the in-flight call
	time.Sleep(20 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "run", b.lemma)
	assert.EqualValues(t, 1, m.calls.Load())
}

func TestResolve_ExplanatoryAnswersRejected(t *testing.T) {
	t.Parallel()

	answers := []string{"The lemma is run", "Base form is run", "It is the verb run", "The answer is run"}
	for _, a := range answers {
		t.Run(a, func(t *testing.T) {
			t.Parallel()

			cache := NewMemoryCache(0)
			r := newTestResolver(&mockCompleter{CompleteFunc: answer(a)}, cache)

			got, err := r.Resolve(context.Background(), "ran", "English", nil)
			assert.ErrorIs(t, err, domain.ErrInvalidLemma)
			assert.Empty(t, got)
			assert.Equal(t, 0, cache.Len())
		})
	}
}

func TestResolve_SurroundingWhitespaceSharesKey(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache(0)
	m := &mockCompleter{CompleteFunc: answer("run")}
	r := newTestResolver(m, cache)

	_, err := r.Resolve(context.Background(), " ran\t", "English", nil)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "ran", "English", nil)
	require.NoError(t, err)

	assert.EqualValues(t, 1, m.calls.Load())
	assert.Equal(t, 1, cache.Len())
}
