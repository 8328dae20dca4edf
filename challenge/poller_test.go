package challenge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// titleStream replays titles in order and repeats the last one forever.
type titleStream struct {
	titles []string
	reads  int
}

func (s *titleStream) next(context.Context) (string, error) {
	i := s.reads
	if i >= len(s.titles) {
		i = len(s.titles) - 1
	}
	s.reads++
	return s.titles[i], nil
}

// fakeSleep records requested waits without blocking.
type fakeSleep struct {
	calls []time.Duration
}

func (f *fakeSleep) sleep(_ context.Context, d time.Duration) error {
	f.calls = append(f.calls, d)
	return nil
}

func (f *fakeSleep) total() time.Duration {
	var sum time.Duration
	for _, d := range f.calls {
		sum += d
	}
	return sum
}

func newTestPoller(attempts int, delay time.Duration) (*Poller, *fakeSleep) {
	fs := &fakeSleep{}
	p := NewPoller(attempts, delay)
	p.Sleep = fs.sleep
	return p, fs
}

func TestPoller_ResolvesOnThirdAttempt(t *testing.T) {
	p, fs := newTestPoller(15, time.Second)
	titles := &titleStream{titles: []string{"Just a moment...", "Just a moment...", "Example Domain"}}

	out, err := p.Wait(context.Background(), titles.next)
	require.NoError(t, err)

	assert.True(t, out.Resolved)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, titles.reads, "no reads after resolution")
	assert.Len(t, fs.calls, 3, "no waits after resolution")

	assert.False(t, Blocked("<html><title>Example Domain</title></html>", out.Resolved))
}

func TestPoller_ResolvesImmediately(t *testing.T) {
	p, fs := newTestPoller(15, time.Second)
	titles := &titleStream{titles: []string{"Example Domain"}}

	out, err := p.Wait(context.Background(), titles.next)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Resolved: true, Attempts: 1}, out)
	assert.Equal(t, []time.Duration{time.Second}, fs.calls, "the delay precedes the first read")
}

func TestPoller_ExhaustsBudget(t *testing.T) {
	p, fs := newTestPoller(15, time.Second)
	titles := &titleStream{titles: []string{"Just a moment..."}}

	out, err := p.Wait(context.Background(), titles.next)
	require.NoError(t, err)

	assert.False(t, out.Resolved)
	assert.Equal(t, 15, out.Attempts)
	assert.Equal(t, 15, titles.reads)
	assert.Len(t, fs.calls, 15)
	assert.Equal(t, 15*time.Second, fs.total())
	assert.True(t, Blocked("<title>Just a moment...</title>", out.Resolved))
}

func TestPoller_BoundedWait(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		delay    time.Duration
	}{
		{"defaults", 15, time.Second},
		{"single attempt", 1, 250 * time.Millisecond},
		{"short delay", 40, 10 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, fs := newTestPoller(tt.attempts, tt.delay)
			titles := &titleStream{titles: []string{"Just a moment..."}}

			_, err := p.Wait(context.Background(), titles.next)
			require.NoError(t, err)

			assert.LessOrEqual(t, fs.total(), time.Duration(tt.attempts)*tt.delay)
			assert.Equal(t, p.MaxWait(), fs.total())
		})
	}
}

func TestPoller_SentinelIsCaseSensitive(t *testing.T) {
	p, _ := newTestPoller(3, time.Millisecond)
	titles := &titleStream{titles: []string{"just a moment..."}}

	out, err := p.Wait(context.Background(), titles.next)
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Equal(t, 1, out.Attempts)
}

func TestPoller_ZeroValueUsesDefaults(t *testing.T) {
	p := &Poller{}
	assert.Equal(t, time.Duration(DefaultAttempts)*DefaultDelay, p.MaxWait())

	p = NewPoller(-1, -time.Second)
	assert.Equal(t, 15*time.Second, p.MaxWait())
}

func TestPoller_TitleErrorAborts(t *testing.T) {
	p, fs := newTestPoller(15, time.Second)
	boom := errors.New("target closed")
	reads := 0
	title := func(context.Context) (string, error) {
		reads++
		if reads == 2 {
			return "", boom
		}
		return "Just a moment...", nil
	}

	out, err := p.Wait(context.Background(), title)
	require.ErrorIs(t, err, boom)
	assert.False(t, out.Resolved)
	assert.Equal(t, 2, out.Attempts)
	assert.Len(t, fs.calls, 2)
}

func TestPoller_ContextCancelStopsSleep(t *testing.T) {
	p := NewPoller(15, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	out, err := p.Wait(ctx, func(context.Context) (string, error) {
		called = true
		return "", nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.Equal(t, Outcome{}, out)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Minute), context.DeadlineExceeded)
}
