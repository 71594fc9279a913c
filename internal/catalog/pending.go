package catalog

import (
	"context"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
)

// Pending is the second phase of an optimistic add. The tool is already in
// the catalog under TempID; the handle settles once the store answers.
type Pending struct {
	tempID string
	tool   *domain.Tool // as inserted, under tempID
	done   chan struct{}
	id     string
	err    error
}

func newPending(tool *domain.Tool) *Pending {
	return &Pending{tempID: tool.ID, tool: tool, done: make(chan struct{})}
}

// TempID is the ID the tool carries until the store confirms.
func (p *Pending) TempID() string { return p.tempID }

// Tool is a copy of the tool as it was inserted.
func (p *Pending) Tool() *domain.Tool { return p.tool.Clone() }

// Done is closed when the add is confirmed or rolled back.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the add settles and returns the store-assigned ID.
// A non-nil error means the tool was rolled back out of the catalog.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.id, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Pending) settle(id string, err error) {
	p.id, p.err = id, err
	close(p.done)
}
