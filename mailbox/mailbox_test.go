package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMailbox_FIFOPerSender(t *testing.T) {
	tx, rx := New[int]()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, tx.Send(ctx, i))
	}
	tx.Close()

	var got []int
	for {
		v, err := rx.Recv(ctx)
		if err != nil {
			assert.ErrorIs(t, err, ErrEndOfStream)
			break
		}
		got = append(got, v)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestMailbox_DefaultCapacity(t *testing.T) {
	tx, _ := New[int](func(o *Options) { o.Capacity = -1 })
	defer tx.Close()

	assert.Equal(t, DefaultCapacity, tx.Cap())
}

func TestMailbox_Backpressure(t *testing.T) {
	tx, rx := New[string](func(o *Options) { o.Capacity = 1 })
	defer tx.Close()

	ctx := context.Background()
	require.NoError(t, tx.Send(ctx, "first"))
	assert.ErrorIs(t, tx.TrySend("second"), ErrFull)

	sent := make(chan error, 1)
	go func() { sent <- tx.Send(ctx, "second") }()

	select {
	case <-sent:
		t.Fatal("send should block while the mailbox is full")
	case <-time.After(20 * time.Millisecond):
	}

	v, err := rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	require.NoError(t, <-sent)

	v, err = rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestMailbox_SendCancelled(t *testing.T) {
	tx, _ := New[int](func(o *Options) { o.Capacity = 1 })
	defer tx.Close()

	require.NoError(t, tx.TrySend(1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, tx.Send(ctx, 2), context.DeadlineExceeded)
}

func TestMailbox_EndOfStreamAfterAllClonesReleased(t *testing.T) {
	tx, rx := New[int]()
	clone := tx.Clone()
	ctx := context.Background()

	require.NoError(t, clone.Send(ctx, 7))
	tx.Close()
	tx.Close() // idempotent

	v, err := rx.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	recvCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = rx.Recv(recvCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "clone still holds the mailbox open")

	clone.Close()
	_, err = rx.Recv(ctx)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestMailbox_ReleasedHandle(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	extra := tx.Clone()
	defer extra.Close()

	tx.Close()
	assert.True(t, tx.Released())
	assert.ErrorIs(t, tx.Send(context.Background(), 1), ErrSenderClosed)
	assert.ErrorIs(t, tx.TrySend(1), ErrSenderClosed)

	dead := tx.Clone()
	assert.True(t, dead.Released())
	assert.ErrorIs(t, dead.TrySend(1), ErrSenderClosed)
}

func TestMailbox_ReceiverClosed(t *testing.T) {
	tx, rx := New[int](func(o *Options) { o.Capacity = 1 })
	defer tx.Close()

	ctx := context.Background()
	require.NoError(t, tx.Send(ctx, 1))

	blocked := make(chan error, 1)
	go func() { blocked <- tx.Send(ctx, 2) }()
	time.Sleep(10 * time.Millisecond)

	rx.Close()

	assert.ErrorIs(t, <-blocked, ErrClosed)
	assert.ErrorIs(t, tx.Send(ctx, 3), ErrClosed)
	assert.True(t, tx.ReceiverClosed())

	_, err := rx.Recv(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

type countingTracker struct {
	mu sync.Mutex
	n  int
}

func (c *countingTracker) Add(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += delta
}

func (c *countingTracker) Done() { c.Add(-1) }

func (c *countingTracker) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestMailbox_TrackerBalance(t *testing.T) {
	tr := &countingTracker{}
	tx, rx := New[int](func(o *Options) {
		o.Capacity = 2
		o.Tracker = tr
	})
	ctx := context.Background()

	require.NoError(t, tx.Send(ctx, 1))
	require.NoError(t, tx.Send(ctx, 2))
	assert.ErrorIs(t, tx.TrySend(3), ErrFull)
	assert.Equal(t, 2, tr.value())

	_, err := rx.Recv(ctx)
	require.NoError(t, err)
	rx.Ack()
	assert.Equal(t, 1, tr.value())

	// Discarded items settle as well.
	rx.Close()
	assert.Equal(t, 0, tr.value())
	tx.Close()
}

func TestMailbox_ConcurrentSenders(t *testing.T) {
	tx, rx := New[int](func(o *Options) { o.Capacity = 4 })
	ctx := context.Background()

	const senders, perSender = 4, 50

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		h := tx.Clone()
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			defer h.Close()
			for i := 0; i < perSender; i++ {
				_ = h.Send(ctx, base*1000+i)
			}
		}(s)
	}
	tx.Close()

	last := map[int]int{}
	count := 0
	for {
		v, err := rx.Recv(ctx)
		if err != nil {
			require.ErrorIs(t, err, ErrEndOfStream)
			break
		}
		base, seq := v/1000, v%1000
		if prev, ok := last[base]; ok {
			assert.Greater(t, seq, prev, "per-sender order must be preserved")
		}
		last[base] = seq
		count++
	}
	wg.Wait()

	assert.Equal(t, senders*perSender, count)
}
