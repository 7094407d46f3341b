// Package workspace wires the vault file system, the SQLite engine, the
// metadata store, and the reactive cache for one blob path.
package workspace

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/hoard/internal/cache"
	"github.com/mesh-intelligence/hoard/internal/hostfs"
	"github.com/mesh-intelligence/hoard/internal/sqlite"
	"github.com/mesh-intelligence/hoard/pkg/types"
)

// ErrUnsavedChanges is returned by Reload when the cache holds changes that
// have not been written to disk.
var ErrUnsavedChanges = errors.New("workspace has unsaved changes")

// ErrClosed is returned by operations on a closed Workspace.
var ErrClosed = errors.New("workspace is closed")

// Option configures a Workspace.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	notifier types.Notifier
}

// WithLogger sets the logger shared by the workspace and its cache.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier sets the cache notice sink.
func WithNotifier(n types.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// Workspace is an open vault.
type Workspace struct {
	cfg    types.Config
	fs     *hostfs.FS
	cache  *cache.Cache
	logger *slog.Logger

	mu     sync.Mutex
	engine *sqlite.Engine
	store  *sqlite.Store
	sum    [sha256.Size]byte // digest of the blob as last loaded or saved
	closed bool

	watchers  sync.WaitGroup
	stopWatch []context.CancelFunc
}

// Open loads the blob named by cfg.DBPath under cfg.VaultDir and attaches a
// cache to it. A missing blob opens a fresh store without a schema; call
// Init to create one.
func Open(ctx context.Context, cfg types.Config, opts ...Option) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	fs, err := hostfs.New(cfg.VaultDir)
	if err != nil {
		return nil, err
	}
	cacheOpts := []cache.Option{cache.WithLogger(o.logger)}
	if o.notifier != nil {
		cacheOpts = append(cacheOpts, cache.WithNotifier(o.notifier))
	}
	w := &Workspace{
		cfg:    cfg,
		fs:     fs,
		cache:  cache.New(cacheOpts...),
		logger: o.logger,
	}
	if err := w.load(); err != nil {
		return nil, err
	}
	o.logger.DebugContext(ctx, "Opened workspace", "vault", fs.Root(), "db", cfg.DBPath)
	return w, nil
}

// load reads the blob, opens a new engine, and attaches the cache to it.
// The previous engine, if any, is closed. The caller must hold w.mu or be
// the only user of w.
func (w *Workspace) load() error {
	data, err := w.readBlob()
	if err != nil {
		return err
	}
	engine, err := sqlite.OpenEngine(data)
	if err != nil {
		return &types.PersistenceError{Op: "read", Path: w.cfg.DBPath, Err: err}
	}
	store := sqlite.NewStore(engine)
	if err := w.cache.Attach(store); err != nil {
		engine.Close()
		if w.store != nil {
			_ = w.cache.Attach(w.store)
		} else {
			w.cache.Detach()
		}
		return err
	}
	if w.engine != nil {
		w.engine.Close()
	}
	w.engine = engine
	w.store = store
	w.sum = sha256.Sum256(data)
	return nil
}

func (w *Workspace) readBlob() ([]byte, error) {
	ok, err := w.fs.Exists(w.cfg.DBPath)
	if err != nil {
		return nil, &types.PersistenceError{Op: "read", Path: w.cfg.DBPath, Err: err}
	}
	if !ok {
		return nil, nil
	}
	data, err := w.fs.ReadBinary(w.cfg.DBPath)
	if err != nil {
		return nil, &types.PersistenceError{Op: "read", Path: w.cfg.DBPath, Err: err}
	}
	return data, nil
}

// Cache returns the workspace cache. All mutations go through it.
func (w *Workspace) Cache() *cache.Cache {
	return w.cache
}

// Config returns the configuration the workspace was opened with.
func (w *Workspace) Config() types.Config {
	return w.cfg
}

// FS returns the vault file system.
func (w *Workspace) FS() *hostfs.FS {
	return w.fs
}

// BlobPath returns the absolute location of the blob.
func (w *Workspace) BlobPath() (string, error) {
	return w.fs.Abs(w.cfg.DBPath)
}

// HasSchema reports whether the open store has a schema.
func (w *Workspace) HasSchema() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.HasSchema()
}

// SchemaVersion returns the store's recorded migration version.
func (w *Workspace) SchemaVersion() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.SchemaVersion()
}

// Init applies the schema and saves the blob. It uses cfg.SchemaFile when
// set, read from the vault, and the embedded script otherwise. Init is
// idempotent with the embedded script.
func (w *Workspace) Init(ctx context.Context) error {
	w.mu.Lock()
	var script string
	if w.cfg.SchemaFile != "" {
		s, err := w.fs.Read(w.cfg.SchemaFile)
		if err != nil {
			w.mu.Unlock()
			return &types.SchemaError{Script: w.cfg.SchemaFile, Err: err}
		}
		script = s
	}
	err := w.store.SetUpSchema(script)
	w.mu.Unlock()
	if err != nil {
		return err
	}
	if err := w.resync(); err != nil {
		return err
	}
	return w.Save(ctx)
}

// Migrate applies the forward migration and saves the blob.
func (w *Workspace) Migrate(ctx context.Context) error {
	w.mu.Lock()
	err := w.store.Migrate()
	w.mu.Unlock()
	if err != nil {
		return err
	}
	return w.Save(ctx)
}

func (w *Workspace) resync() error {
	if err := w.cache.RefreshTables(); err != nil {
		return err
	}
	return w.cache.RefreshEnums()
}

// Save writes the blob through the cache, clearing its modified flag.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec := &recordingFS{FileSystem: w.fs}
	if err := w.cache.Save(ctx, rec, w.cfg.DBPath); err != nil {
		return err
	}
	if rec.written {
		w.sum = rec.sum
	}
	return nil
}

// Commit saves when autosave is enabled and the cache holds changes.
func (w *Workspace) Commit(ctx context.Context) error {
	if !w.cfg.Autosave || !w.cache.Modified() {
		return nil
	}
	return w.Save(ctx)
}

// Reload re-reads the blob from disk and resyncs the cache. It refuses to
// discard unsaved changes.
func (w *Workspace) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.cache.Modified() {
		return ErrUnsavedChanges
	}
	if err := w.load(); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Reloaded workspace", "db", w.cfg.DBPath)
	return nil
}

// Close stops any watchers, detaches the cache, and releases the engine.
// Unsaved changes are lost. Close is idempotent.
func (w *Workspace) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	stops := w.stopWatch
	w.stopWatch = nil
	w.mu.Unlock()

	// A watcher may be waiting on w.mu inside Reload; it sees closed and
	// returns.
	for _, stop := range stops {
		stop()
	}
	w.watchers.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache.Detach()
	if w.engine == nil {
		return nil
	}
	err := w.engine.Close()
	w.engine = nil
	return err
}

// changedOnDisk reports whether data differs from the blob last loaded or
// saved by this workspace.
func (w *Workspace) changedOnDisk(data []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return sha256.Sum256(data) != w.sum
}

// recordingFS remembers the digest of the last blob written through it.
type recordingFS struct {
	types.FileSystem
	written bool
	sum     [sha256.Size]byte
}

func (r *recordingFS) WriteBinary(path string, data []byte) error {
	if err := r.FileSystem.WriteBinary(path, data); err != nil {
		return err
	}
	r.written = true
	r.sum = sha256.Sum256(data)
	return nil
}
