// Package catalog owns the in-process list of tools and reconciles
// optimistic local mutations with the remote store.
//
// All local mutations are applied synchronously under a single mutex and are
// visible as soon as the call returns. Remote calls always run outside the
// lock; their outcome is folded back in by tool ID, so a late answer for a
// tool that is gone is harmless.
package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/notify"
)

const (
	DefaultUndoWindow   = 5 * time.Second
	DefaultStoreTimeout = 10 * time.Second
)

// Store is the remote document collection.
type Store interface {
	Create(ctx context.Context, rec domain.Record) (string, error)
	ListAll(ctx context.Context) ([]*domain.Tool, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, tool *domain.Tool) error
}

// Mirror receives a copy of the whole list after local changes.
type Mirror interface {
	Write(tools []*domain.Tool) error
}

type Options struct {
	UndoWindow   time.Duration    // grace period of a pending delete (default 5s)
	StoreTimeout time.Duration    // budget of each background store call (default 10s)
	Mirror       Mirror           // optional local cache
	Now          func() time.Time // defaults to time.Now
}

// Catalog is the single source of truth for what the user sees.
type Catalog struct {
	mu    sync.Mutex
	tools []*domain.Tool          // display order, insertion based
	byID  map[string]*domain.Tool // same pointers as tools

	pending  *pendingDelete      // at most one delete awaiting its undo window
	gen      uint64              // generation of the latest pending delete
	orphans  map[string]struct{} // temp IDs deleted before their create was confirmed
	deleting map[string]struct{} // store IDs whose remote delete is in flight

	// Load reads the store outside mu. These record what changed locally
	// meanwhile so that a stale listing cannot undo it.
	loadMu  sync.Mutex        // one Load at a time
	seq     uint64            // change counter, under mu
	touched map[string]uint64 // store ID -> seq of its last local change or sync
	removed map[string]uint64 // store ID -> seq of its finished remote delete
	syncing map[string]int    // store ID -> background updates in flight

	syncMu sync.Mutex // serializes background updates so the last write wins
	wg     sync.WaitGroup

	rev       uint64     // bumped on every mirrored change, under mu
	mirrorMu  sync.Mutex // orders mirror writes
	mirrorRev uint64     // last revision written, under mirrorMu

	store    Store
	notifier notify.Notifier
	mirror   Mirror
	logger   logger.Logger
	opts     Options
}

// New creates an empty catalog. Call Load to fill it from the store.
func New(store Store, notifier notify.Notifier, log logger.Logger, opts Options) *Catalog {
	if opts.UndoWindow <= 0 {
		opts.UndoWindow = DefaultUndoWindow
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Catalog{
		byID:     make(map[string]*domain.Tool),
		orphans:  make(map[string]struct{}),
		deleting: make(map[string]struct{}),
		touched:  make(map[string]uint64),
		removed:  make(map[string]uint64),
		syncing:  make(map[string]int),
		store:    store,
		notifier: notifier,
		mirror:   opts.Mirror,
		logger:   log,
		opts:     opts,
	}
}

// Load replaces the catalog with the store's content.
// On failure the catalog is left as it was; there is no retry.
// Tools still waiting for their create to be confirmed are kept, and the
// tool in the pending-delete slot is not brought back. Local changes made
// while the listing was in flight, or still being written to the store,
// win over the listed copy.
func (c *Catalog) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	start := c.seq
	c.mu.Unlock()

	tools, err := c.store.ListAll(ctx)
	if err != nil {
		c.notifier.Error("", "Failed to load tools", err)
		return err
	}

	c.mu.Lock()
	skip := make(map[string]struct{}, len(c.deleting)+1)
	for id := range c.deleting {
		skip[id] = struct{}{}
	}
	for id, at := range c.removed {
		if at > start {
			skip[id] = struct{}{}
		}
	}
	if c.pending != nil {
		skip[c.pending.tool.ID] = struct{}{}
	}

	next := make([]*domain.Tool, 0, len(tools))
	byID := make(map[string]*domain.Tool, len(tools))
	for _, t := range tools {
		if _, ok := skip[t.ID]; ok {
			continue
		}
		if _, dup := byID[t.ID]; dup {
			continue
		}
		if local, ok := c.byID[t.ID]; ok && c.changedSinceLocked(t.ID, start) {
			t = local
		}
		next = append(next, t)
		byID[t.ID] = t
	}
	for _, t := range c.tools {
		if _, listed := byID[t.ID]; listed {
			continue
		}
		if domain.IsTempID(t.ID) || c.changedSinceLocked(t.ID, start) {
			next = append(next, t)
			byID[t.ID] = t
		}
	}
	c.tools, c.byID = next, byID

	// loads are serialized, so the next one starts past everything seen here
	for id, at := range c.touched {
		if at <= start {
			delete(c.touched, id)
		}
	}
	for id, at := range c.removed {
		if at <= start {
			delete(c.removed, id)
		}
	}
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.logger.Info("catalog loaded from store", logger.Int("count", len(snap.tools)))
	c.writeMirror(snap)
	return nil
}

// changedSinceLocked reports whether the local copy of id is newer than a
// listing started at seq start.
func (c *Catalog) changedSinceLocked(id string, start uint64) bool {
	return c.touched[id] > start || c.syncing[id] > 0
}

// touchLocked records a local change of a stored tool. With push set, a
// background update is expected and counted until it finishes.
func (c *Catalog) touchLocked(id string, push bool) {
	if domain.IsTempID(id) {
		return
	}
	c.seq++
	c.touched[id] = c.seq
	if push {
		c.syncing[id]++
	}
}

// Add validates the draft and inserts the tool right away under a temporary
// ID. Persisting happens in the background; the returned handle settles with
// the store-assigned ID, or with the error after the tool was rolled back.
func (c *Catalog) Add(ctx context.Context, d domain.Draft) (*Pending, error) {
	tool, err := domain.NewTool(d, domain.NewTempID(), c.opts.Now())
	if err != nil {
		return nil, err
	}
	sent := tool.Clone()
	p := newPending(tool.Clone())

	c.mu.Lock()
	c.tools = append(c.tools, tool)
	c.byID[tool.ID] = tool
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.writeMirror(snap)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.persist(ctx, sent, p)
	}()

	return p, nil
}

func (c *Catalog) persist(parent context.Context, sent *domain.Tool, p *Pending) {
	ctx, cancel := c.storeContext(parent)
	defer cancel()

	id, err := c.store.Create(ctx, sent.Record())
	if err != nil {
		c.rollbackAdd(sent.ID)
		c.notifier.Error(sent.ID, "Failed to save tool", err)
		p.settle("", err)
		return
	}

	c.confirmAdd(ctx, sent, id)
	p.settle(id, nil)
}

// rollbackAdd drops every trace of a tool whose create failed.
func (c *Catalog) rollbackAdd(tempID string) {
	c.mu.Lock()
	c.removeLocked(tempID)
	delete(c.orphans, tempID)
	if c.pending != nil && c.pending.tool.ID == tempID {
		// nothing was stored, so there is nothing left to delete or undo
		c.pending.timer.Stop()
		c.pending = nil
	}
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.writeMirror(snap)
}

// confirmAdd swaps the temporary ID for the store ID in place.
func (c *Catalog) confirmAdd(ctx context.Context, sent *domain.Tool, id string) {
	c.mu.Lock()
	t, ok := c.byID[sent.ID]
	if !ok {
		c.confirmMissingLocked(ctx, sent.ID, id)
		return
	}

	if _, loaded := c.byID[id]; loaded {
		// a Load already brought the stored copy in; keep the local one
		c.removeLocked(id)
	}
	delete(c.byID, sent.ID)
	t.ID = id
	c.byID[id] = t

	dirty := !domain.SameContent(t, sent)
	c.touchLocked(id, dirty)
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.logger.Debug("tool confirmed by store",
		logger.String("temp_id", sent.ID),
		logger.String("tool_id", id))
	c.writeMirror(snap)
	if dirty {
		c.pushUpdate(ctx, id)
	}
}

// confirmMissingLocked handles a confirmation for a tool that left the
// catalog while its create was in flight. It releases c.mu.
func (c *Catalog) confirmMissingLocked(ctx context.Context, tempID, id string) {
	if c.pending != nil && c.pending.tool.ID == tempID {
		c.pending.tool.ID = id
		c.mu.Unlock()
		return
	}
	if _, ok := c.orphans[tempID]; ok {
		delete(c.orphans, tempID)
		c.deleting[id] = struct{}{}
		c.mu.Unlock()
		c.deleteRemote(ctx, id)
		return
	}
	c.mu.Unlock()
	c.logger.Debug("confirmation for unknown tool ignored",
		logger.String("temp_id", tempID),
		logger.String("tool_id", id))
}

// Edit applies a partial change in place. DateAdded and LastUsed are kept.
// The local result is authoritative: mirroring it to the store is best
// effort and a failure is reported, never reverted.
func (c *Catalog) Edit(ctx context.Context, id string, p domain.Patch) (*domain.Tool, error) {
	c.mu.Lock()
	t, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	f, err := p.Merge(t).Validate()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	t.Apply(f)
	c.touchLocked(id, true)
	out := t.Clone()
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.writeMirror(snap)
	c.pushUpdate(ctx, id)
	return out, nil
}

// MarkUsed stamps LastUsed with the current time.
func (c *Catalog) MarkUsed(ctx context.Context, id string) (*domain.Tool, error) {
	c.mu.Lock()
	t, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	t.LastUsed = c.opts.Now()
	c.touchLocked(id, true)
	out := t.Clone()
	snap := c.mirrorStateLocked()
	c.mu.Unlock()

	c.writeMirror(snap)
	c.pushUpdate(ctx, id)
	return out, nil
}

// pushUpdate sends the latest state of a confirmed tool to the store in the
// background. Temporary IDs are skipped: confirmAdd pushes them once known.
// The caller has counted the update with touchLocked.
func (c *Catalog) pushUpdate(parent context.Context, id string) {
	if domain.IsTempID(id) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.syncMu.Lock()
		defer c.syncMu.Unlock()
		defer c.synced(id)

		c.mu.Lock()
		t, ok := c.byID[id]
		if ok {
			t = t.Clone()
		}
		c.mu.Unlock()
		if !ok {
			return
		}

		ctx, cancel := c.storeContext(parent)
		defer cancel()
		if err := c.store.Update(ctx, t); err != nil {
			c.notifier.Error(id, "Failed to save changes", err)
		}
	}()
}

// synced closes the books on one background update of id. The stamp keeps a
// Load that listed the store before the write landed from reverting it.
func (c *Catalog) synced(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.syncing[id]--; c.syncing[id] <= 0 {
		delete(c.syncing, id)
	}
	c.seq++
	c.touched[id] = c.seq
}

// Get returns a copy of one tool.
func (c *Catalog) Get(id string) (*domain.Tool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Snapshot returns copies of all tools in display order.
func (c *Catalog) Snapshot() []*domain.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Len returns the number of visible tools.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tools)
}

// View is the projected display list for the given choices.
func (c *Catalog) View(v domain.View) []*domain.Tool {
	return domain.Project(c.Snapshot(), v)
}

// Categories lists the distinct categories across the whole catalog.
func (c *Catalog) Categories() []string {
	return domain.Categories(c.Snapshot())
}

// Close finalizes a pending delete and waits for background store calls.
func (c *Catalog) Close(ctx context.Context) {
	c.Flush(ctx)
	c.wg.Wait()
}

func (c *Catalog) snapshotLocked() []*domain.Tool {
	out := make([]*domain.Tool, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.Clone()
	}
	return out
}

// removeLocked takes a tool out of the catalog and returns it.
func (c *Catalog) removeLocked(id string) (*domain.Tool, bool) {
	t, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	delete(c.byID, id)
	c.tools = slices.DeleteFunc(c.tools, func(x *domain.Tool) bool { return x == t })
	return t, true
}

// restoreLocked re-appends a tool. Its original position is not kept.
func (c *Catalog) restoreLocked(t *domain.Tool) {
	if _, ok := c.byID[t.ID]; ok {
		return
	}
	c.tools = append(c.tools, t)
	c.byID[t.ID] = t
}

func (c *Catalog) storeContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// outlive the request that triggered the call
	return context.WithTimeout(context.WithoutCancel(parent), c.opts.StoreTimeout)
}

type mirrorState struct {
	rev   uint64
	tools []*domain.Tool
}

func (c *Catalog) mirrorStateLocked() mirrorState {
	c.rev++
	return mirrorState{rev: c.rev, tools: c.snapshotLocked()}
}

// writeMirror stores a snapshot unless a newer one was already written.
func (c *Catalog) writeMirror(s mirrorState) {
	if c.mirror == nil {
		return
	}
	c.mirrorMu.Lock()
	defer c.mirrorMu.Unlock()

	if s.rev <= c.mirrorRev {
		return
	}
	if err := c.mirror.Write(s.tools); err != nil {
		c.logger.Warn("failed to write local mirror", logger.Error(err))
		return
	}
	c.mirrorRev = s.rev
}
