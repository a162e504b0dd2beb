package realtime

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/keyurgolani/BabyNest-sub006/internal/sweetspot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "channel closed")
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestHubDeliversToMatchingBaby(t *testing.T) {
	h := NewHub()
	defer h.Close()
	ctx := context.Background()

	a, cancelA := h.Subscribe(ctx, "a")
	defer cancelA()
	b, cancelB := h.Subscribe(ctx, "b")
	defer cancelB()

	require.NoError(t, h.Publish(ctx, Update{BabyID: "a", Prediction: sweetspot.Prediction{Status: sweetspot.StatusOvertired}}))

	got := receive(t, a)
	assert.Equal(t, sweetspot.StatusOvertired, got.Prediction.Status)
	select {
	case <-b:
		t.Fatal("baby b should not receive baby a's update")
	default:
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	h := NewHub()
	ctx, cancelCtx := context.WithCancel(context.Background())

	ch, _ := h.Subscribe(ctx, "a")
	assert.Equal(t, 1, h.Subscribers("a"))

	cancelCtx()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on context cancel")
	}
	assert.Equal(t, 0, h.Subscribers("a"))
	require.NoError(t, h.Publish(context.Background(), Update{BabyID: "a"}))
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	defer h.Close()
	ch, cancel := h.Subscribe(context.Background(), "a")
	defer cancel()

	for i := 0; i < subscriberBuffer*3; i++ {
		require.NoError(t, h.Publish(context.Background(), Update{BabyID: "a"}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(context.Background(), "a")

	require.NoError(t, h.Close())
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	late, _ := h.Subscribe(context.Background(), "a")
	_, ok = <-late
	assert.False(t, ok)
}

func TestHubCancelStopsWatcherWithLongLivedContext(t *testing.T) {
	h := NewHub()
	defer h.Close()
	ctx := context.Background()
	before := runtime.NumGoroutine()

	cancels := make([]func(), 0, 50)
	for i := 0; i < 50; i++ {
		_, cancel := h.Subscribe(ctx, "a")
		cancels = append(cancels, cancel)
	}
	assert.Equal(t, 50, h.Subscribers("a"))
	for _, cancel := range cancels {
		cancel()
		cancel()
	}

	assert.Equal(t, 0, h.Subscribers("a"))
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= before }, time.Second, 10*time.Millisecond)
}

func TestHubCloseStopsWatchers(t *testing.T) {
	h := NewHub()
	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		h.Subscribe(context.Background(), "a")
	}
	require.NoError(t, h.Close())
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= before }, time.Second, 10*time.Millisecond)
}

func TestHubInvalidation(t *testing.T) {
	h := NewHub()
	defer h.Close()
	var got []string
	h.OnInvalidate(func(babyID string) { got = append(got, babyID) })

	require.NoError(t, h.PublishInvalidation(context.Background(), "a"))
	require.NoError(t, h.PublishInvalidation(context.Background(), "b"))

	assert.Equal(t, []string{"a", "b"}, got)
}
