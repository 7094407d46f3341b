// Package cache implements the reactive cache: an in-memory mirror of the
// metadata store that callers read synchronously.
//
// Every mutation goes through the Cache. It validates trivial preconditions
// locally, delegates to the Store, and on success re-reads the smallest
// affected slice of the Store into the mirror (read-after-write, never
// predictive patching), sets the modified flag, and notifies subscribers.
// A failed mutation leaves the mirror and the modified flag untouched.
//
// The Cache is the single serialization point for the store: bypassing it
// to mutate the Store directly desynchronizes the mirror until the next
// RefreshTables or RefreshEnums.
package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/hoard/pkg/types"
)

// Store is the metadata store surface the cache delegates to.
type Store interface {
	HasSchema() (bool, error)

	CreateTable(label string) (int64, error)
	UpdateTable(id int64, u types.TableUpdate) error
	DeleteTable(id int64) error
	SelectTables() ([]types.Table, error)

	AddColumn(tableID int64, label, datatype string) (int64, error)
	UpdateColumn(id int64, u types.ColumnUpdate) error
	DeleteColumn(id int64) error
	SelectColumns(tableID int64) ([]types.Column, error)
	ReorderColumns(ids []int64) error

	AddRow(tableID int64) (int64, error)
	DeleteRow(id int64) error
	SelectRows(tableID int64) ([]types.Row, error)

	UpdateCell(rowID, columnID int64, value string) error
	SelectCells(tableID int64) ([]types.Cell, error)

	CreateEnum(label string) (int64, error)
	UpdateEnum(id int64, u types.EnumUpdate) error
	DeleteEnum(id int64) error
	SelectEnums() ([]types.Enum, error)

	AddEnumVariant(enumID int64, label string) (int64, error)
	UpdateEnumVariant(id int64, u types.EnumVariantUpdate) error
	DeleteEnumVariant(id int64) error
	SelectEnumVariants(enumID int64) ([]types.EnumVariant, error)
	ReorderEnumVariants(ids []int64) error

	Save(fs types.FileSystem, path string) error
}

// EventKind identifies which slice of the mirror changed.
type EventKind int

const (
	// TablesRefreshed: the whole table side of the mirror was replaced.
	TablesRefreshed EventKind = iota
	// TableRefreshed: one table's columns, rows, and cells were replaced.
	TableRefreshed
	// CellUpdated: a single cell value changed.
	CellUpdated
	// EnumsRefreshed: the whole enum side of the mirror was replaced.
	EnumsRefreshed
	// VariantsRefreshed: one enum's variants were replaced.
	VariantsRefreshed
	// Saved: the store was written to disk and modified was cleared.
	Saved
)

func (k EventKind) String() string {
	switch k {
	case TablesRefreshed:
		return "tables"
	case TableRefreshed:
		return "table"
	case CellUpdated:
		return "cell"
	case EnumsRefreshed:
		return "enums"
	case VariantsRefreshed:
		return "variants"
	case Saved:
		return "saved"
	default:
		return "unknown"
	}
}

// Event describes a change to the mirror. Only the ids relevant to Kind are
// set.
type Event struct {
	Kind     EventKind
	TableID  int64
	RowID    int64
	ColumnID int64
	EnumID   int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithNotifier sets the sink for user-visible notices.
func WithNotifier(n types.Notifier) Option {
	return func(c *Cache) { c.notifier = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// Cache is the reactive cache. The zero value is not usable; call New.
type Cache struct {
	mu       sync.Mutex
	store    Store
	mirror   mirror
	modified bool

	logger   *slog.Logger
	notifier types.Notifier

	subs    map[int]func(Event)
	nextSub int
	pending []Event
}

// New returns a detached Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		mirror: newMirror(),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.notifier == nil {
		logger := c.logger
		c.notifier = types.NotifierFunc(func(msg string) {
			logger.Info("Notice", "msg", msg)
		})
	}
	return c
}

// Attach connects the cache to store and performs a full resync. The
// modified flag starts false. When the resync fails the store stays
// attached with an empty mirror and the error is returned.
func (c *Cache) Attach(store Store) error {
	return c.do(func() error {
		c.store = store
		c.mirror = newMirror()
		c.modified = false
		if err := c.refreshTablesLocked(); err != nil {
			return err
		}
		return c.refreshEnumsLocked()
	})
}

// Detach drops the store and clears the mirror.
func (c *Cache) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = nil
	c.mirror = newMirror()
	c.modified = false
}

// Attached reports whether a store is attached.
func (c *Cache) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store != nil
}

// Modified reports whether the store changed since the last successful save
// or attach.
func (c *Cache) Modified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modified
}

// Subscribe registers fn to be called after every change to the mirror.
// Callbacks run outside the cache lock, so they may read the cache. The
// returned function cancels the subscription.
func (c *Cache) Subscribe(fn func(Event)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// RefreshTables re-selects every table with its columns, rows, and cells.
// Use it whenever the mirror cannot be assumed consistent with the store.
func (c *Cache) RefreshTables() error {
	return c.do(func() error {
		if c.store == nil {
			return nil
		}
		return c.refreshTablesLocked()
	})
}

// RefreshEnums re-selects every enum with its variants.
func (c *Cache) RefreshEnums() error {
	return c.do(func() error {
		if c.store == nil {
			return nil
		}
		return c.refreshEnumsLocked()
	})
}

// Save writes the whole store to path through fs and clears the modified
// flag. The mirror is not re-validated. On failure modified is unchanged.
// ctx only bounds the wait before the write starts.
func (c *Cache) Save(ctx context.Context, fs types.FileSystem, path string) error {
	if err := ctx.Err(); err != nil {
		return &types.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return c.do(func() error {
		if c.store == nil {
			return c.reject("save", types.ErrDetached)
		}
		if err := c.store.Save(fs, path); err != nil {
			return c.fail("save", err)
		}
		c.modified = false
		c.emit(Event{Kind: Saved})
		c.logger.Debug("Saved store", "path", path)
		return nil
	})
}

// do runs fn under the lock, then delivers the events fn emitted to every
// subscriber once the lock is released.
func (c *Cache) do(fn func() error) error {
	c.mu.Lock()
	err := fn()
	events := c.pending
	c.pending = nil
	subs := make([]func(Event), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, e := range events {
		for _, s := range subs {
			s(e)
		}
	}
	return err
}

// emit queues e for delivery. The caller must hold c.mu.
func (c *Cache) emit(e Event) {
	c.pending = append(c.pending, e)
}

// markModified records a successful mutation. The caller must hold c.mu.
func (c *Cache) markModified() {
	c.modified = true
}

// reject swallows a local precondition failure: the operation becomes a
// no-op, a notice is raised, and nil is returned.
func (c *Cache) reject(op string, err error) error {
	ve := &types.ValidationError{Field: op, Err: err}
	c.logger.Debug("Rejected operation", "err", ve)
	c.notifier.Notice("Cannot " + ve.Error())
	return nil
}

// fail reports a store or persistence failure and returns it unchanged.
func (c *Cache) fail(op string, err error) error {
	c.logger.Error("Operation failed", "op", op, "err", err)
	c.notifier.Notice("Failed to " + op + ": " + err.Error())
	return err
}
