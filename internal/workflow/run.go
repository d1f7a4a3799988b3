package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dubforge/internal/logging"
	"dubforge/internal/queue"
	"dubforge/internal/services"
)

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := m.store.NextWithStatus(ctx, m.statusOrder...)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next task", "error", err)
			if !m.sleep(ctx, m.retryDelay) {
				return
			}
			continue
		}
		if task == nil {
			if !m.sleep(ctx, m.pollInterval) {
				return
			}
			continue
		}

		if err := m.processTask(ctx, task); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (m *Manager) processTask(ctx context.Context, task *queue.Task) error {
	stg, ok := m.stageByStart[task.Status]
	if !ok {
		m.logger.Warn("no stage configured for status", "status", string(task.Status))
		m.sleep(ctx, m.pollInterval)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithTaskID(ctx, task.ID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, requestID)
	stageLogger := logging.WithTask(m.logger, task.ID, stg.name).With("request_id", requestID)
	stageCtx = logging.WithContext(stageCtx, stageLogger)

	if err := m.transitionToProcessing(stageCtx, stg, task); err != nil {
		stageLogger.Error("failed to transition task to processing", "error", err)
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, task)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, task *queue.Task) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		"processing_status", string(stg.processingStatus),
		"source", task.SourcePath,
	)

	if err := stg.handler.Prepare(ctx, task); err != nil {
		m.handleStageFailure(ctx, stg.name, task, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, task); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", "error", wrapped)
		m.setLastError(wrapped)
		return wrapped
	}

	if err := stg.handler.Execute(ctx, task); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(ctx, stg.name, task, err)
		m.setLastError(err)
		return err
	}

	// Handlers may set review directly; only advance tasks still in flight.
	if task.Status == stg.processingStatus || task.Status == "" {
		task.Status = stg.doneStatus
	}
	if task.Status == queue.StatusCompleted {
		task.ProgressStage = "completed"
		task.ProgressPercent = 100
		if task.ProgressMessage == "" {
			task.ProgressMessage = "completed"
		}
	}
	if err := m.store.Update(ctx, task); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", "error", wrapped)
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		"next_status", string(task.Status),
		"stage_duration", time.Since(stageStart),
	)
	m.setLastTask(task)
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, task *queue.Task) error {
	task.Status = stg.processingStatus
	task.ProgressStage = stg.name
	task.ProgressPercent = 0
	task.ProgressMessage = fmt.Sprintf("%s started", stg.name)
	task.ErrorMessage = ""
	if err := m.store.Update(ctx, task); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastTask(task)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, task *queue.Task, stageErr error) {
	status := services.FailureStatus(stageErr)
	message := stageErr.Error()

	task.Status = status
	task.ErrorMessage = message
	if status == queue.StatusReview {
		task.ReviewReason = message
	}

	m.logger.Error("stage failed",
		"task_id", task.ID,
		"stage", stageName,
		"resolved_status", string(status),
		"error", stageErr,
	)

	if err := m.store.Update(ctx, task); err != nil {
		if errors.Is(err, context.Canceled) {
			m.logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			m.logger.Error("failed to persist stage failure", "error", err)
		}
	}
	m.setLastTask(task)
}
