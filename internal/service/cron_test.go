package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPoster struct {
	calls  atomic.Int32
	chatID atomic.Value
}

func (p *countingPoster) PostBlockedList(ctx context.Context, chatID string) error {
	p.chatID.Store(chatID)
	p.calls.Add(1)
	return nil
}

func TestCronRunner_PostsOnInterval(t *testing.T) {
	poster := &countingPoster{}
	runner := NewCronRunner(poster, "oc_ops", 10*time.Millisecond, nil)

	runner.Start()
	assert.Eventually(t, func() bool { return poster.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	runner.Stop()

	assert.Equal(t, "oc_ops", poster.chatID.Load())

	calls := poster.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, poster.calls.Load(), "no reports after Stop")
}

func TestCronRunner_DisabledIsNoop(t *testing.T) {
	poster := &countingPoster{}

	noChat := NewCronRunner(poster, "", time.Millisecond, nil)
	assert.False(t, noChat.Enabled())
	noChat.Start()
	noChat.Stop()

	noInterval := NewCronRunner(poster, "oc_ops", 0, nil)
	assert.False(t, noInterval.Enabled())
	noInterval.Start()

	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, poster.calls.Load())
}
