package service

import "sync"

// Outbox holds per-user notification queues for polling clients. It is
// process-lifetime only: messages do not survive a restart. Reads are
// non-destructive; a polling client re-fetches its full backlog.
type Outbox struct {
	mu     sync.Mutex
	queues map[int64][]string
}

// NewOutbox returns an empty notification outbox.
func NewOutbox() *Outbox {
	return &Outbox{queues: make(map[int64][]string)}
}

// Enqueue appends a message to the user's queue. Safe for concurrent use;
// concurrent enqueues never lose messages.
func (o *Outbox) Enqueue(userID int64, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queues[userID] = append(o.queues[userID], message)
}

// List returns a copy of the user's queued messages, oldest first.
func (o *Outbox) List(userID int64) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	queue := o.queues[userID]
	out := make([]string, len(queue))
	copy(out, queue)
	return out
}
