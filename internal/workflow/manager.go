package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dubforge/internal/config"
	"dubforge/internal/logging"
	"dubforge/internal/queue"
	"dubforge/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Separator   stage.Handler
	Transcriber stage.Handler
	Translator  stage.Handler
	Synthesizer stage.Handler
	Renderer    stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	retryDelay   time.Duration

	stages       []pipelineStage
	stageByStart map[queue.Status]pipelineStage
	statusOrder  []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastTask *queue.Task
}

// NewManager constructs a workflow manager with the given stage handlers.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger.With("component", "workflow"),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryDelay:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	if m.retryDelay <= 0 {
		m.retryDelay = time.Second
	}
	m.configureStages(stages)
	return m
}

func (m *Manager) configureStages(stages StageSet) {
	ordered := []pipelineStage{
		{
			name:             "separate",
			handler:          stages.Separator,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusSeparating,
			doneStatus:       queue.StatusSeparated,
		},
		{
			name:             "transcribe",
			handler:          stages.Transcriber,
			startStatus:      queue.StatusSeparated,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		},
		{
			name:             "translate",
			handler:          stages.Translator,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusTranslating,
			doneStatus:       queue.StatusTranslated,
		},
		{
			name:             "synthesize",
			handler:          stages.Synthesizer,
			startStatus:      queue.StatusTranslated,
			processingStatus: queue.StatusSynthesizing,
			doneStatus:       queue.StatusSynthesized,
		},
		{
			name:             "render",
			handler:          stages.Renderer,
			startStatus:      queue.StatusSynthesized,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusCompleted,
		},
	}

	m.stages = m.stages[:0]
	m.stageByStart = make(map[queue.Status]pipelineStage, len(ordered))
	m.statusOrder = m.statusOrder[:0]
	for _, stg := range ordered {
		if stg.handler == nil {
			continue
		}
		m.stages = append(m.stages, stg)
		m.stageByStart[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		return errors.New("workflow stages not configured")
	}

	if err := m.store.ResetProcessing(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the manager is processing.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastTask returns a copy of the most recently processed task, if any.
func (m *Manager) LastTask() *queue.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastTask == nil {
		return nil
	}
	clone := *m.lastTask
	return &clone
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastTask(task *queue.Task) {
	clone := *task
	m.mu.Lock()
	m.lastTask = &clone
	m.mu.Unlock()
}
