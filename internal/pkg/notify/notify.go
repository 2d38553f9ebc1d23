// Package notify carries transient user-facing notifications (toasts).
// Notifications are fire-and-forget: Notify never fails and returns nothing.
package notify

import "sync"

// Kind is the visual category of a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single toast
type Notification struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier receives notifications
type Notifier interface {
	Notify(n Notification)
}

// Success builds a success notification
func Success(title, message string) Notification {
	return Notification{Kind: KindSuccess, Title: title, Message: message}
}

// Failure builds an error notification
func Failure(title, message string) Notification {
	return Notification{Kind: KindError, Title: title, Message: message}
}

// Queue collects notifications raised while handling one request so the
// page answering it can render them.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Notify implements Notifier
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Items returns a copy of the queued notifications in arrival order
func (q *Queue) Items() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Last returns the most recent notification
func (q *Queue) Last() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notification{}, false
	}
	return q.items[len(q.items)-1], true
}

// Discard drops every notification
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notification) {}
