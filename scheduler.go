package main

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskResult is the outcome of one batch target.
type TaskResult struct {
	JobID  string
	Target Target
	Result *RunResult
	Error  error
}

// SessionFactory opens a fresh session for one job. Every job gets its own
// cookie jar; sessions are never reused across targets.
type SessionFactory func(cfg Config, logger Logger) (*Session, error)

// Scheduler runs independent location-change workflows concurrently.
type Scheduler struct {
	workerCount  int
	workChan     chan Target
	resultsChan  chan TaskResult
	wg           sync.WaitGroup
	newSession   SessionFactory
	logger       Logger
	staggerDelay time.Duration
	cancel       context.CancelFunc
}

func NewScheduler(workerCount int, newSession SessionFactory, staggerDelay time.Duration, logger Logger) *Scheduler {
	if workerCount <= 0 {
		workerCount = 1
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Scheduler{
		workerCount:  workerCount,
		workChan:     make(chan Target, workerCount*2),
		resultsChan:  make(chan TaskResult, workerCount*2),
		newSession:   newSession,
		logger:       logger,
		staggerDelay: staggerDelay,
	}
}

func generateJobID() string {
	return uuid.New().String()[:8]
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.runWorker(ctx)

		if s.staggerDelay > 0 && i < s.workerCount-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.staggerDelay):
			}
		}
	}
}

func (s *Scheduler) runWorker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case target, ok := <-s.workChan:
			if !ok {
				return // Channel closed, exit
			}
			if ctx.Err() != nil {
				return
			}

			result := s.runTarget(ctx, target)
			select {
			case s.resultsChan <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Scheduler) runTarget(ctx context.Context, target Target) TaskResult {
	id := generateJobID()
	logger := &jobLogger{id: id, base: s.logger}
	logger.Log("Processing: %s", target)

	cfg := NewConfig(target.Locale, target.CountryCode)
	session, err := s.newSession(cfg, logger)
	if err != nil {
		logger.Log("Failed to open session: %v", err)
		return TaskResult{JobID: id, Target: target, Error: err}
	}

	workflow := NewWorkflow(cfg, session, WorkflowOptions{
		CookiePath: target.CookiePath,
		HTMLPath:   target.HTMLPath,
	}, logger)

	result, err := workflow.Run(ctx, target.Policy.Select(cfg))
	if err != nil {
		logger.Log("Failed: %v", err)
	}
	return TaskResult{JobID: id, Target: target, Result: result, Error: err}
}

// Submit adds a target to the work queue. It gives up and returns ctx.Err()
// once ctx is done, so a feeder never blocks on a queue nobody drains.
func (s *Scheduler) Submit(ctx context.Context, target Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.workChan <- target:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the results channel for reading task outcomes.
func (s *Scheduler) Results() <-chan TaskResult {
	return s.resultsChan
}

// Close stops accepting work, waits for workers to finish and closes Results.
func (s *Scheduler) Close() {
	close(s.workChan)
	s.wg.Wait()
	if s.cancel != nil {
		s.cancel()
	}
	close(s.resultsChan)
}

// WorkerCount returns the number of workers.
func (s *Scheduler) WorkerCount() int {
	return s.workerCount
}
