package catalog

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

// pendingDelete is a tool removed from view whose remote deletion waits for
// the undo window. Only one exists at a time.
type pendingDelete struct {
	tool        *domain.Tool // tool.ID follows a confirmation that lands meanwhile
	requestedID string       // ID the delete was requested with
	gen         uint64
	timer       *time.Timer
	deadline    time.Time
}

// PendingInfo describes the delete currently awaiting its undo window.
type PendingInfo struct {
	Tool     *domain.Tool
	Deadline time.Time
}

// Delete removes the tool from view immediately and starts its undo window.
// A delete that was already pending is finalized right away: its timer is
// stopped and its remote deletion issued before Delete returns. The result
// describes the delete this call started.
func (c *Catalog) Delete(ctx context.Context, id string) (PendingInfo, error) {
	c.mu.Lock()
	t, ok := c.removeLocked(id)
	if !ok {
		c.mu.Unlock()
		return PendingInfo{}, domain.ErrNotFound
	}

	prev, prevID := c.takePendingLocked()

	c.gen++
	gen := c.gen
	c.pending = &pendingDelete{
		tool:        t,
		requestedID: id,
		gen:         gen,
		deadline:    c.opts.Now().Add(c.opts.UndoWindow),
		timer:       time.AfterFunc(c.opts.UndoWindow, func() { c.expire(gen) }),
	}
	info := PendingInfo{Tool: t.Clone(), Deadline: c.pending.deadline}
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.writeMirror(snap)
	c.notifier.Info(id, "Tool deleted")

	if prev != nil {
		c.logger.Debug("pending delete superseded",
			logger.String("tool_id", prevID),
			logger.String("by", id))
		c.finalize(ctx, prevID)
	}
	return info, nil
}

// Undo restores the pending tool. An empty id matches whatever is pending.
// It reports false when nothing matching is pending anymore, in which case
// nothing changes.
func (c *Catalog) Undo(id string) bool {
	c.mu.Lock()
	pd := c.pending
	if pd == nil || (id != "" && id != pd.requestedID && id != pd.tool.ID) {
		c.mu.Unlock()
		return false
	}
	// a timer that already fired finds c.pending changed and backs off
	pd.timer.Stop()
	c.pending = nil
	c.restoreLocked(pd.tool)
	c.touchLocked(pd.tool.ID, false)
	snap := c.mirrorStateLocked()
	restoredID := pd.tool.ID
	c.mu.Unlock()

	c.writeMirror(snap)
	c.notifier.Info(restoredID, "Tool restored")
	return true
}

// PendingDelete reports the delete awaiting its undo window, if any.
func (c *Catalog) PendingDelete() (PendingInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return PendingInfo{}, false
	}
	return PendingInfo{Tool: c.pending.tool.Clone(), Deadline: c.pending.deadline}, true
}

// Flush finalizes the pending delete now instead of waiting out its window.
func (c *Catalog) Flush(ctx context.Context) {
	c.mu.Lock()
	pd, id := c.takePendingLocked()
	c.mu.Unlock()

	if pd != nil {
		c.finalize(ctx, id)
	}
}

// expire is the timer callback of generation gen.
func (c *Catalog) expire(gen uint64) {
	c.mu.Lock()
	if c.pending == nil || c.pending.gen != gen {
		// undone or superseded meanwhile
		c.mu.Unlock()
		return
	}
	_, id := c.takePendingLocked()
	// counted before mu is released so that Close waits for it
	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	c.finalize(context.Background(), id)
}

// takePendingLocked clears the pending slot and stops its timer. It returns
// the ID to delete remotely, or "" when the store has nothing yet: a tool
// still under a temporary ID is recorded as an orphan and deleted as soon as
// its create is confirmed.
func (c *Catalog) takePendingLocked() (*pendingDelete, string) {
	pd := c.pending
	if pd == nil {
		return nil, ""
	}
	pd.timer.Stop()
	c.pending = nil

	id := pd.tool.ID
	if domain.IsTempID(id) {
		c.orphans[id] = struct{}{}
		return pd, ""
	}
	c.deleting[id] = struct{}{}
	return pd, id
}

// finalize issues the remote deletion. A failure is reported but the tool
// stays out of the catalog: there is no re-insertion and no retry.
func (c *Catalog) finalize(ctx context.Context, id string) {
	if id == "" {
		return
	}
	c.deleteRemote(ctx, id)
}

func (c *Catalog) deleteRemote(parent context.Context, id string) {
	ctx, cancel := c.storeContext(parent)
	defer cancel()

	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	delete(c.deleting, id)
	c.seq++
	c.removed[id] = c.seq
	c.mu.Unlock()

	if err != nil {
		c.notifier.Error(id, "Failed to delete tool", err)
		return
	}
	c.logger.Info("tool deleted from store", logger.String("tool_id", id))
}
