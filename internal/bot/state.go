package bot

import "sync"

// dialogs keeps per-user dialog state between updates.
type dialogs[T any] struct {
	mu     sync.Mutex
	byUser map[int64]T
}

func newDialogs[T any]() *dialogs[T] {
	return &dialogs[T]{byUser: make(map[int64]T)}
}

func (d *dialogs[T]) get(userID int64) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.byUser[userID]
	return v, ok
}

func (d *dialogs[T]) set(userID int64, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byUser[userID] = v
}

func (d *dialogs[T]) drop(userID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byUser, userID)
}
