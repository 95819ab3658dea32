package broadcast_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"authstate/internal/broadcast"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func recv[T any](t *testing.T, sub *broadcast.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func assertEmpty[T any](t *testing.T, sub *broadcast.Subscription[T]) {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected value %v", v)
		}
	default:
	}
}

func TestSubscribe_ReplaysInitialValue(t *testing.T) {
	ch := broadcast.New[*string](nil)
	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()

	assert.Nil(t, recv(t, sub))
	assertEmpty(t, sub)
}

func TestSubscribe_ReplaysLatestAfterPublishes(t *testing.T) {
	ch := broadcast.New(0)
	ch.Publish(1)
	ch.Publish(2)

	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()

	assert.Equal(t, 2, recv(t, sub))
	assertEmpty(t, sub)
}

func TestPublish_DeliversInOrder(t *testing.T) {
	ch := broadcast.New("")
	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()

	ch.Publish("v1")
	ch.Publish("v2")
	ch.Publish("v3")

	assert.Equal(t, "", recv(t, sub))
	assert.Equal(t, "v1", recv(t, sub))
	assert.Equal(t, "v2", recv(t, sub))
	assert.Equal(t, "v3", recv(t, sub))
	assert.Zero(t, sub.Dropped())
}

func TestPublish_SlowSubscriberDropsOldest(t *testing.T) {
	ch := broadcast.New(0, broadcast.WithBuffer(2))
	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()

	for i := 1; i <= 5; i++ {
		ch.Publish(i)
	}

	// Queue holds the two most recent values; the replayed 0 and 1..3 were dropped.
	assert.Equal(t, 4, recv(t, sub))
	assert.Equal(t, 5, recv(t, sub))
	assert.Equal(t, uint64(4), sub.Dropped())
	assert.Equal(t, 5, ch.Last())
}

func TestPublish_NeverBlocksWithoutReaders(t *testing.T) {
	ch := broadcast.New(0, broadcast.WithBuffer(1))
	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			ch.Publish(i)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Equal(t, 999, recv(t, sub))
}

func TestCancel_ClosesAndDetaches(t *testing.T) {
	ch := broadcast.New(0)
	a := ch.Subscribe(context.Background())
	b := ch.Subscribe(context.Background())
	defer b.Cancel()
	require.Equal(t, 2, ch.Len())

	a.Cancel()
	a.Cancel()
	assert.Equal(t, 1, ch.Len())

	ch.Publish(7)
	assert.Equal(t, 0, recv(t, b))
	assert.Equal(t, 7, recv(t, b))

	// a still holds its replayed value, then reports closed.
	assert.Equal(t, 0, <-a.C())
	_, ok := <-a.C()
	assert.False(t, ok)
}

func TestSubscribe_ContextCancelUnsubscribes(t *testing.T) {
	ch := broadcast.New(0)
	ctx, cancel := context.WithCancel(context.Background())
	sub := ch.Subscribe(ctx)
	assert.Equal(t, 0, recv(t, sub))

	cancel()
	require.Eventually(t, func() bool { return ch.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-sub.C()
	assert.False(t, ok)
}

func TestSubscribe_DoneContext(t *testing.T) {
	ch := broadcast.New(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sub := ch.Subscribe(ctx)
	require.Eventually(t, func() bool { return ch.Len() == 0 }, time.Second, 5*time.Millisecond)
	var got []int
	for v := range sub.C() {
		got = append(got, v)
	}
	assert.Equal(t, []int{3}, got)
}

func TestDetach_StopsEmissionsKeepsSubscribers(t *testing.T) {
	ch := broadcast.New(1)
	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()
	assert.Equal(t, 1, recv(t, sub))

	ch.Detach()
	ch.Publish(2)

	assertEmpty(t, sub)
	assert.Equal(t, 1, ch.Len())
	assert.Equal(t, 1, ch.Last())
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	ch := broadcast.New(0, broadcast.WithBuffer(64))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			ch.Publish(i)
		}
	}()

	for i := 0; i < 20; i++ {
		sub := ch.Subscribe(context.Background())
		first := recv(t, sub)
		// Values after the replay must be strictly increasing and never older
		// than the replayed one.
		prev := first
	drain:
		for {
			select {
			case v := <-sub.C():
				assert.Greater(t, v, prev)
				prev = v
			default:
				break drain
			}
		}
		sub.Cancel()
	}
	wg.Wait()
	assert.Equal(t, 50, ch.Last())
}

func TestWithClone_EachSubscriberGetsCopy(t *testing.T) {
	ch := broadcast.New([]int{1}, broadcast.WithClone(slices.Clone[[]int]))
	a := ch.Subscribe(context.Background())
	defer a.Cancel()
	b := ch.Subscribe(context.Background())
	defer b.Cancel()

	recv(t, a)[0] = 99
	assert.Equal(t, []int{1}, recv(t, b))
	assert.Equal(t, []int{1}, ch.Last())

	ch.Publish([]int{2})
	recv(t, a)[0] = 99
	assert.Equal(t, []int{2}, recv(t, b))

	late := ch.Subscribe(context.Background())
	defer late.Cancel()
	assert.Equal(t, []int{2}, recv(t, late))
}

func TestWithClone_IgnoredForOtherType(t *testing.T) {
	ch := broadcast.New(1, broadcast.WithClone(func(s string) string { return s + "!" }))
	sub := ch.Subscribe(context.Background())
	defer sub.Cancel()
	assert.Equal(t, 1, recv(t, sub))
}
