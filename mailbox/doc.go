// Package mailbox implements the bounded, ordered, multi-producer /
// single-consumer transport that carries envelopes between agents.
//
// A mailbox is created as a pair: a cloneable *Sender handle and an
// exclusively owned *Receiver. Senders block while the queue is at capacity
// (backpressure) and fail with ErrClosed once the receiver is gone. The
// receiver observes ErrEndOfStream after every sender handle has been
// released and the queue has been drained, which is how an agent's run loop
// learns that nobody can reach it anymore.
//
// Usage:
//
//	tx, rx := mailbox.New[string](func(o *mailbox.Options) { o.Capacity = 8 })
//	go func() {
//		defer tx.Close()
//		_ = tx.Send(ctx, "hello")
//	}()
//	for {
//		v, err := rx.Recv(ctx)
//		if errors.Is(err, mailbox.ErrEndOfStream) {
//			break
//		}
//		...
//		rx.Ack()
//	}
//
// Ordering is FIFO per sender. No ordering or fairness is promised across
// distinct senders interleaving on the same mailbox.
package mailbox
