// Package notify keeps a short feed of user-facing notifications.
package notify

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

// DefaultCapacity bounds the feed; older notifications are dropped.
const DefaultCapacity = 50

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is one message shown to the user.
type Notification struct {
	ID      int64     `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	ToolID  string    `json:"toolId,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier is what the catalog reports user-visible outcomes to.
type Notifier interface {
	Info(toolID, msg string)
	Error(toolID, msg string, err error)
}

// Feed is a bounded in-memory Notifier that also logs every entry.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	cap    int
	nextID int64
	logger logger.Logger
	now    func() time.Time
}

// NewFeed creates a feed holding at most capacity notifications.
func NewFeed(log logger.Logger, capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		items:  make([]Notification, 0, capacity),
		cap:    capacity,
		logger: log,
		now:    time.Now,
	}
}

func (f *Feed) Info(toolID, msg string) {
	f.logger.Info(msg, logger.String("tool_id", toolID))
	f.push(Notification{Level: LevelInfo, Message: msg, ToolID: toolID})
}

func (f *Feed) Error(toolID, msg string, err error) {
	n := Notification{Level: LevelError, Message: msg, ToolID: toolID}
	if err != nil {
		n.Error = err.Error()
	}
	f.logger.Warn(msg, logger.String("tool_id", toolID), logger.Error(err))
	f.push(n)
}

func (f *Feed) push(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	n.ID = f.nextID
	n.At = f.now()
	if len(f.items) == f.cap {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Since returns notifications with an ID greater than after, oldest first.
// Pass 0 to get everything still held.
func (f *Feed) Since(after int64) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if n.ID > after {
			out = append(out, n)
		}
	}
	return out
}
