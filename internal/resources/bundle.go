// Package resources owns the retrieval resource bundle (vector store +
// retriever) and its atomic hot reload.
package resources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/retrieve"
	"github.com/destek-ai/destek/internal/vector"
)

const reloadDebounce = 400 * time.Millisecond

// ErrNotLoaded is returned when the bundle has not been loaded yet.
var ErrNotLoaded = errors.New("vector store not loaded")

// Bundle is one immutable generation of retrieval resources. It is replaced
// wholesale on reload so in-flight requests never see a half-updated pair.
type Bundle struct {
	Store     *vector.Store
	Retriever *retrieve.Retriever
}

// Provider loads the bundle from disk and publishes it through an atomic
// pointer. A failed reload keeps the previous generation serving.
type Provider struct {
	indexPath    string
	chunkMapPath string
	current      atomic.Pointer[Bundle]
	logger       *zap.Logger

	mu          sync.Mutex
	reloadTimer *time.Timer
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a provider for the store at the given paths. Nothing is
// loaded until Load is called.
func NewProvider(indexPath, chunkMapPath string, opts ...Option) *Provider {
	p := &Provider{
		indexPath:    indexPath,
		chunkMapPath: chunkMapPath,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads the store from disk and publishes a fresh bundle. On error the
// previously published bundle (if any) stays in place.
func (p *Provider) Load() error {
	store, err := vector.LoadStore(p.indexPath, p.chunkMapPath)
	if err != nil {
		return fmt.Errorf("load vector store: %w", err)
	}
	bundle := &Bundle{
		Store:     store,
		Retriever: retrieve.New(store, retrieve.WithLogger(p.logger)),
	}
	p.current.Store(bundle)
	p.logger.Info("vector store loaded",
		zap.Int("vectors", store.Size()),
		zap.Int("dimensions", store.Dimensions()))
	return nil
}

// Loaded reports whether a bundle has been published.
func (p *Provider) Loaded() bool {
	return p.current.Load() != nil
}

// Retriever returns the current retriever, or ErrNotLoaded.
func (p *Provider) Retriever() (*retrieve.Retriever, error) {
	bundle := p.current.Load()
	if bundle == nil {
		return nil, ErrNotLoaded
	}
	return bundle.Retriever, nil
}

// Store returns the current vector store, or ErrNotLoaded.
func (p *Provider) Store() (*vector.Store, error) {
	bundle := p.current.Load()
	if bundle == nil {
		return nil, ErrNotLoaded
	}
	return bundle.Store, nil
}

// Watch reloads the bundle when the index or chunk map file changes on disk.
// Events are debounced so a build writing both files triggers one reload.
// Runs until ctx is cancelled.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dirs := map[string]bool{
		filepath.Dir(p.indexPath):    true,
		filepath.Dir(p.chunkMapPath): true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !p.relevantEvent(ev) {
					continue
				}
				p.scheduleReload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if err != nil {
					p.logger.Debug("watcher error", zap.Error(err))
				}
			}
		}
	}()
	return nil
}

func (p *Provider) relevantEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return ev.Name == p.indexPath || ev.Name == p.chunkMapPath
}

func (p *Provider) scheduleReload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reloadTimer != nil {
		p.reloadTimer.Stop()
	}
	p.reloadTimer = time.AfterFunc(reloadDebounce, func() {
		if err := p.Load(); err != nil {
			p.logger.Error("hot reload failed, keeping previous store", zap.Error(err))
		}
	})
}
