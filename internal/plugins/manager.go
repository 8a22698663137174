// Package plugins implements the plugin loader (C4): it scans a
// discovery directory for provider source files, runs the static
// safety validator over each, loads the validated ones as compiled
// providers, keeps a capability index of their tools, and watches the
// directory for changes.
package plugins

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	goplugin "github.com/hashicorp/go-plugin"
	"github.com/robfig/cron/v3"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// Record tracks one discovered plugin source file's lifecycle.
type Record struct {
	toolkit.PluginRecord
	adapter *adapter
	client  *goplugin.Client
	tools   []string
}

// Manager owns plugin discovery, validation, loading, and the
// capability index, and keeps the registry in sync with the discovery
// directory's contents.
type Manager struct {
	dir      string
	registry *registry.Registry
	index    *CapabilityIndex
	log      *slog.Logger

	mu      sync.Mutex
	records map[string]*Record // keyed by source path

	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
	watchWg     sync.WaitGroup
	debounce    time.Duration

	cron *cron.Cron
}

// NewManager constructs a Manager that discovers plugin sources under
// dir and registers validated ones into reg.
func NewManager(dir string, reg *registry.Registry, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		dir:      dir,
		registry: reg,
		index:    NewCapabilityIndex(),
		log:      log.With("component", "plugins"),
		records:  make(map[string]*Record),
		debounce: 250 * time.Millisecond,
	}
}

// Index exposes the capability index for discovery queries.
func (m *Manager) Index() *CapabilityIndex { return m.index }

// Records returns a snapshot of every discovered plugin's record.
func (m *Manager) Records() []toolkit.PluginRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]toolkit.PluginRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.PluginRecord)
	}
	return out
}

// DiscoverAll scans the directory once: enumerates candidate source
// files, validates, loads, and registers each, and unregisters any
// record whose backing file has disappeared.
func (m *Manager) DiscoverAll(ctx context.Context) error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read plugin directory: %w", err)
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		if isUnderscorePrefixed(entry.Name()) {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		seen[path] = struct{}{}
		m.loadOne(ctx, path)
	}

	m.mu.Lock()
	var stale []string
	for path := range m.records {
		if _, ok := seen[path]; !ok {
			stale = append(stale, path)
		}
	}
	m.mu.Unlock()
	for _, path := range stale {
		m.unload(path)
	}

	return nil
}

func (m *Manager) loadOne(ctx context.Context, path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		m.log.Warn("failed to read plugin source", "path", path, "error", err)
		return
	}

	hash := contentHash(src)
	m.mu.Lock()
	existing, known := m.records[path]
	m.mu.Unlock()
	if known && existing.ContentHash == hash {
		return // unchanged since last discovery
	}

	record := &Record{PluginRecord: toolkit.PluginRecord{
		ID:           uuid.New(),
		Path:         path,
		ContentHash:  hash,
		DiscoveredAt: time.Now(),
	}}

	verdict := ValidateSource(path, string(src))
	for _, warning := range verdict.Warnings {
		m.log.Warn("plugin validation warning", "path", path, "warning", warning)
	}

	// A previously loaded version of this file may still be registered
	// under its old adapter; unload it before acting on the new content,
	// so a modified file that now fails validation or loading leaves none
	// of its old tools registered.
	if known {
		m.unregisterLocked(existing)
	}

	if !verdict.Valid {
		record.ValidationStatus = toolkit.PluginRejected
		record.RejectReason = joinErrors(verdict.Errors)
		m.log.Warn("plugin rejected", "path", path, "reason", record.RejectReason)
		m.replaceRecord(path, record)
		return
	}
	record.ValidationStatus = toolkit.PluginValid

	provider, client, err := loadCompiled(path)
	if err != nil {
		record.ValidationStatus = toolkit.PluginRejected
		record.RejectReason = err.Error()
		m.log.Warn("plugin load failed", "path", path, "error", err)
		m.replaceRecord(path, record)
		return
	}

	if err := provider.Initialize(ctx); err != nil {
		record.ValidationStatus = toolkit.PluginRejected
		record.RejectReason = fmt.Sprintf("initialize failed: %v", err)
		m.log.Warn("plugin initialize failed", "path", path, "error", err)
		client.Kill()
		m.replaceRecord(path, record)
		return
	}

	a := newAdapter(provider)
	bindings := a.Tools()
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		m.registry.Register(b.Descriptor, b.Executor)
		m.index.Put(Capability{
			Name:        b.Descriptor.Name,
			Description: b.Descriptor.Description,
			Category:    InferCategory(b.Descriptor.Description),
			Tags:        InferTags(b.Descriptor.Description),
			Complexity:  InferComplexity(b.Descriptor.Description),
		})
		names = append(names, b.Descriptor.Name)
	}

	record.adapter = a
	record.client = client
	record.tools = names
	m.replaceRecord(path, record)
	m.log.Info("plugin loaded", "path", path, "provider", provider.Name(), "tools", len(names))
}

func (m *Manager) replaceRecord(path string, record *Record) {
	m.mu.Lock()
	m.records[path] = record
	m.mu.Unlock()
}

func (m *Manager) unload(path string) {
	m.mu.Lock()
	record, ok := m.records[path]
	if ok {
		delete(m.records, path)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	m.unregisterLocked(record)
	m.log.Info("plugin unloaded", "path", path)
}

func (m *Manager) unregisterLocked(record *Record) {
	for _, name := range record.tools {
		m.registry.Unregister(name)
		m.index.Remove(name)
	}
	if record.adapter != nil {
		_ = record.adapter.Shutdown(context.Background())
	}
	if record.client != nil {
		record.client.Kill()
	}
}

// StartWatching begins an fsnotify watch on the discovery directory,
// debouncing bursts of filesystem events into a single rescan, and
// arms a cron backstop that rescans on a fixed schedule in case
// individual filesystem events are missed (network filesystems,
// editors that replace files via rename-swap).
func (m *Manager) StartWatching(ctx context.Context, cronSchedule string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create plugin watcher: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("ensure plugin directory: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch plugin directory: %w", err)
	}

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	m.watchCancel = cancel
	m.watchWg.Add(1)
	go m.watchLoop(watchCtx)

	if cronSchedule != "" {
		m.cron = cron.New()
		if _, err := m.cron.AddFunc(cronSchedule, func() {
			if err := m.DiscoverAll(context.Background()); err != nil {
				m.log.Warn("cron plugin rescan failed", "error", err)
			}
		}); err != nil {
			m.log.Warn("invalid plugin rescan schedule", "schedule", cronSchedule, "error", err)
		} else {
			m.cron.Start()
		}
	}

	return nil
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.watchWg.Done()

	var mu sync.Mutex
	var timer *time.Timer
	scheduleRescan := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(m.debounce, func() {
			if err := m.DiscoverAll(context.Background()); err != nil {
				m.log.Warn("plugin rescan failed", "error", err)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleRescan()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn("plugin watch error", "error", err)
		}
	}
}

// Close stops the filesystem watcher and cron backstop.
func (m *Manager) Close() error {
	if m.watchCancel != nil {
		m.watchCancel()
	}
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if watcher != nil {
		_ = watcher.Close()
	}
	m.watchWg.Wait()
	if m.cron != nil {
		m.cron.Stop()
	}
	return nil
}

func contentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}

var _ providers.Provider = (*adapter)(nil)
