// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest watches folders for new PDFs and runs each one through the
// filter, extraction, summarization, and note writing on a fixed pool of
// workers. Files that produced a note are recorded in the de-dup cache and
// never processed again.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-abstractor/internal/dedup"
	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/internal/note"
	"github.com/pdiddy/paper-abstractor/internal/vault"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

var (
	// ErrAlreadyRunning is returned by Start when the monitor is not stopped.
	ErrAlreadyRunning = errors.New("monitor already running")

	// ErrDrainTimeout is returned by Start in drain mode when the queue did
	// not empty within advanced.drain_timeout.
	ErrDrainTimeout = errors.New("drain timed out before all files were processed")
)

// stopGrace is how long an in-flight item may keep running after Stop
// before its context is cancelled. Package-level var for test substitution.
var stopGrace = 30 * time.Second

// State is the lifecycle state of a Monitor.
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Evaluator is the admission filter. *filter.Filter implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, path string) types.FilterResult
	Enabled() bool
	Threshold() float64
}

// Extractor produces the full document. *pdftext.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, path string) (types.Document, error)
}

// Summarizer produces the structured abstract. *ai.Abstractor implements it.
type Summarizer interface {
	Summarize(ctx context.Context, doc types.Document) (types.AbstractRecord, error)
}

// Renderer turns a document and its abstract into note content.
// *note.Formatter implements it.
type Renderer interface {
	Format(doc types.Document, rec types.AbstractRecord) (string, error)
	Filename(doc types.Document) string
}

// NoteWriter stores note content under a unique name. note.Writer implements it.
type NoteWriter interface {
	Write(dir, base, content string) (string, error)
}

// PathResolver resolves the output folder template. *vault.Resolver implements it.
type PathResolver interface {
	ResolveWith(p string, vars map[string]string) (string, error)
}

// Deps are the collaborators a Monitor drives.
type Deps struct {
	Filter     Evaluator
	Extractor  Extractor
	Summarizer Summarizer
	Renderer   Renderer
	Writer     NoteWriter
	Resolver   PathResolver
	Cache      *dedup.Cache
}

// Stats is a point-in-time view of a Monitor.
type Stats struct {
	State    State
	Queued   int
	InFlight int
	Cached   int
	Written  int64
	Rejected int64
	Skipped  int64
	Failed   int64
}

// Monitor owns the watcher, the work queue, and the worker pool.
type Monitor struct {
	cfg  types.Config
	deps Deps

	// life serializes Start and Stop.
	life  sync.Mutex
	state atomic.Int32

	queue    *workQueue
	runCtx   context.Context
	cancel   context.CancelFunc
	group    *errgroup.Group
	watcher  *fsnotify.Watcher
	cron     *cron.Cron
	settling sync.WaitGroup
	stopped  chan struct{}

	mu       sync.Mutex
	inflight map[string]struct{}
	rejected map[string]time.Time

	written  atomic.Int64
	rejects  atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64
}

// New returns a stopped Monitor. cfg paths must already be resolved.
func New(cfg types.Config, deps Deps) *Monitor {
	if cfg.Advanced.Workers < 1 {
		cfg.Advanced.Workers = 1
	}
	if cfg.Watch.PollInterval <= 0 {
		cfg.Watch.PollInterval = time.Second
	}
	if cfg.Advanced.DrainTimeout <= 0 {
		cfg.Advanced.DrainTimeout = types.DefaultConfig().Advanced.DrainTimeout
	}
	if deps.Cache == nil {
		deps.Cache = dedup.New(nil)
	}
	if deps.Writer == nil {
		deps.Writer = note.Writer{}
	}
	if deps.Resolver == nil {
		deps.Resolver, _ = vault.NewResolver("")
	}
	return &Monitor{
		cfg:      cfg,
		deps:     deps,
		queue:    newWorkQueue(),
		inflight: make(map[string]struct{}),
		rejected: make(map[string]time.Time),
	}
}

// State returns the current lifecycle state.
func (m *Monitor) State() State { return State(m.state.Load()) }

// Stats returns queue depth, cache size, and outcome counters.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	inflight := len(m.inflight)
	m.mu.Unlock()
	return Stats{
		State:    m.State(),
		Queued:   m.queue.depth(),
		InFlight: inflight,
		Cached:   m.deps.Cache.Len(),
		Written:  m.written.Load(),
		Rejected: m.rejects.Load(),
		Skipped:  m.skipped.Load(),
		Failed:   m.failures.Load(),
	}
}

// Start loads the cache, attaches the watcher, launches the workers, and
// scans the configured folders. In continuous mode it returns after ctx is
// done or Stop is called. In drain mode it returns once every queued file
// has been processed, or with ErrDrainTimeout. The monitor is stopped when
// Start returns.
func (m *Monitor) Start(ctx context.Context, continuous bool) error {
	if err := m.startup(ctx, continuous); err != nil {
		return err
	}

	m.scanAll()

	if continuous {
		select {
		case <-ctx.Done():
		case <-m.stopped:
		}
		return m.Stop()
	}

	timer := time.NewTimer(m.cfg.Advanced.DrainTimeout)
	defer timer.Stop()

	var err error
	select {
	case <-m.queue.drained():
		logger.Info("all queued files processed")
	case <-timer.C:
		err = fmt.Errorf("%w (%s)", ErrDrainTimeout, m.cfg.Advanced.DrainTimeout)
	case <-ctx.Done():
		err = ctx.Err()
	case <-m.stopped:
	}
	return errors.Join(err, m.Stop())
}

func (m *Monitor) startup(ctx context.Context, continuous bool) error {
	m.life.Lock()
	defer m.life.Unlock()

	if !m.state.CompareAndSwap(int32(Stopped), int32(Starting)) {
		return ErrAlreadyRunning
	}

	if err := m.deps.Cache.Load(); err != nil {
		logger.Warn("loading de-dup cache, starting empty: %v", err)
	}
	if err := m.ensureDirs(); err != nil {
		m.state.Store(int32(Stopped))
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.state.Store(int32(Stopped))
		return fmt.Errorf("creating watcher: %w", err)
	}
	for _, folder := range m.cfg.Watch.Folders {
		if err := m.watchTree(watcher, folder); err != nil {
			watcher.Close()
			m.state.Store(int32(Stopped))
			return err
		}
	}

	var sched *cron.Cron
	if continuous && m.cfg.Watch.RescanSchedule != "" {
		sched = cron.New()
		if _, err := sched.AddFunc(m.cfg.Watch.RescanSchedule, m.scanAll); err != nil {
			watcher.Close()
			m.state.Store(int32(Stopped))
			return fmt.Errorf("parsing rescan schedule %q: %w", m.cfg.Watch.RescanSchedule, err)
		}
	}

	m.runCtx, m.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(m.runCtx)
	m.group = g
	m.watcher = watcher
	m.cron = sched
	m.stopped = make(chan struct{})

	for i := range m.cfg.Advanced.Workers {
		g.Go(func() error {
			m.worker(gctx, i+1)
			return nil
		})
	}
	g.Go(func() error {
		m.watch(gctx, watcher)
		return nil
	})
	if sched != nil {
		sched.Start()
	}

	m.mu.Lock()
	m.state.Store(int32(Running))
	m.mu.Unlock()
	logger.With(logrus.Fields{
		"folders":    len(m.cfg.Watch.Folders),
		"workers":    m.cfg.Advanced.Workers,
		"continuous": continuous,
		"cached":     m.deps.Cache.Len(),
	}).Info("monitor running")
	return nil
}

// ensureDirs creates the output folder, when it holds no per-note
// placeholders, and the quarantine folder.
func (m *Monitor) ensureDirs() error {
	var dirs []string
	if m.cfg.Output.Folder != "" && m.deps.Resolver != nil {
		out, err := m.deps.Resolver.ResolveWith(m.cfg.Output.Folder, nil)
		if err != nil {
			return fmt.Errorf("resolving output folder: %w", err)
		}
		if !strings.Contains(out, "{{") {
			dirs = append(dirs, out)
		}
	}
	if m.cfg.Filter.QuarantineEnabled && m.cfg.Filter.QuarantineFolder != "" {
		dirs = append(dirs, m.cfg.Filter.QuarantineFolder)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}

// Stop detaches the watcher, cancels the workers, waits for them to
// finish, and flushes the cache. It is safe to call more than once and on
// a monitor that never started.
func (m *Monitor) Stop() error {
	m.life.Lock()
	defer m.life.Unlock()

	m.mu.Lock()
	ok := m.state.CompareAndSwap(int32(Running), int32(Stopping))
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	if err := m.watcher.Close(); err != nil {
		logger.Warn("closing watcher: %v", err)
	}
	m.cancel()
	m.group.Wait()
	m.settling.Wait()

	for _, p := range m.queue.discard() {
		m.release(p)
		logger.Debug("abandoned queued file %s", p)
	}

	err := m.deps.Cache.Flush()
	if err != nil {
		err = fmt.Errorf("flushing de-dup cache: %w", err)
	}

	s := m.Stats()
	logger.With(logrus.Fields{
		"written":  s.Written,
		"rejected": s.Rejected,
		"skipped":  s.Skipped,
		"failed":   s.Failed,
		"cached":   s.Cached,
	}).Info("monitor stopped")

	m.state.Store(int32(Stopped))
	close(m.stopped)
	return err
}

// Enqueue schedules path for processing after the settle delay. It returns
// false, without error, when the path is not a candidate, is already in
// the de-dup cache, is already queued or in flight, or the monitor is not
// running.
func (m *Monitor) Enqueue(path string) bool {
	key := dedup.Key(path)
	if !m.matches(key) {
		return false
	}
	if m.deps.Cache.Contains(key) {
		logger.Debug("already processed: %s", key)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.State() != Running {
		return false
	}
	if _, busy := m.inflight[key]; busy {
		return false
	}
	if mod, ok := m.rejected[key]; ok {
		if info, err := os.Stat(key); err == nil && info.ModTime().Equal(mod) {
			return false
		}
		delete(m.rejected, key)
	}
	m.inflight[key] = struct{}{}
	m.queue.reserve()
	m.settling.Add(1)
	go m.settle(m.runCtx, key)
	return true
}

// settle waits for the writer of path to finish, then queues it if it is
// still a readable regular file.
func (m *Monitor) settle(ctx context.Context, path string) {
	defer m.settling.Done()

	if d := m.cfg.Watch.SettleDelay; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			m.abandon(path)
			return
		}
	}

	if err := readable(path); err != nil {
		logger.Debug("dropping %s: %v", path, err)
		m.abandon(path)
		return
	}
	m.queue.put(path)
}

func (m *Monitor) abandon(path string) {
	m.release(path)
	m.queue.done()
}

func (m *Monitor) release(path string) {
	m.mu.Lock()
	delete(m.inflight, path)
	m.mu.Unlock()
}

func readable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// matches reports whether the base name of path fits a watch pattern and
// no ignore pattern.
func (m *Monitor) matches(path string) bool {
	name := filepath.Base(path)
	for _, p := range m.cfg.Watch.IgnorePatterns {
		if ok, _ := filepath.Match(p, name); ok {
			return false
		}
	}
	for _, p := range m.cfg.Watch.Patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// worker pulls paths until ctx is cancelled. Each dequeued path is
// acknowledged exactly once.
func (m *Monitor) worker(ctx context.Context, id int) {
	log := logger.With(logrus.Fields{"worker": id})
	log.Debug("worker started")
	defer log.Debug("worker stopped")

	for ctx.Err() == nil {
		path, ok := m.queue.get(ctx, m.cfg.Watch.PollInterval)
		if !ok {
			continue
		}
		m.runItem(ctx, id, path)
	}
}

// runItem processes one path. The item keeps running for stopGrace after
// ctx is cancelled so a stop does not waste a nearly finished AI call.
func (m *Monitor) runItem(ctx context.Context, id int, path string) {
	defer m.queue.done()
	defer m.release(path)

	itemCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		t := time.AfterFunc(stopGrace, cancel)
		<-itemCtx.Done()
		t.Stop()
	})
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			m.failures.Add(1)
			logger.With(logrus.Fields{"worker": id, "path": path}).Errorf("panic while processing: %v", r)
		}
	}()

	res := m.ProcessOne(itemCtx, path, false)
	if res.Status == types.StatusRejected {
		m.rememberRejected(path)
	}
}

func (m *Monitor) rememberRejected(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.rejected[path] = info.ModTime()
	m.mu.Unlock()
}
