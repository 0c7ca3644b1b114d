package batch

import (
	"context"
	"fmt"
	"image"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// Processor turns one image into an analyzed chart structure. It typically
// composes enhancement, external recognition, and layout analysis.
type Processor func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error)

// ProgressHandler receives the job's progress after each image completes,
// in completion order. The final invocation for a fully processed batch
// reports exactly 1.0.
type ProgressHandler func(progress float64)

// SchedulerConfig holds the scheduler's concurrency limits.
type SchedulerConfig struct {
	// MaxConcurrent is the per-job bound on simultaneous processor
	// invocations (default: 3).
	MaxConcurrent int

	// MaxBatchSize is the largest accepted batch (default: 50). Larger
	// batches are rejected before any processing starts.
	MaxBatchSize int
}

// DefaultSchedulerConfig returns sensible default configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrent: 3,
		MaxBatchSize:  50,
	}
}

// Scheduler runs batches of chart-scan pipelines with bounded concurrency.
// Each batch gets its own worker pool; the scheduler tracks every job it
// has ever run, split into an active set and a completed set.
type Scheduler struct {
	config SchedulerConfig

	mu        sync.RWMutex
	active    []*Job
	completed map[string]*Job
	byID      map[string]*Job
}

// NewScheduler creates a scheduler with default configuration.
func NewScheduler() *Scheduler {
	return NewSchedulerWithConfig(DefaultSchedulerConfig())
}

// NewSchedulerWithConfig creates a scheduler with custom configuration.
func NewSchedulerWithConfig(config SchedulerConfig) *Scheduler {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Scheduler{
		config:    config,
		completed: make(map[string]*Job),
		byID:      make(map[string]*Job),
	}
}

// completion is one processor outcome flowing back to the coordinator.
type completion struct {
	index     int
	structure *model.LayoutStructure
	err       error
}

// ProcessBatch processes every image with at most MaxConcurrent processor
// invocations in flight, refilling as each one finishes. It blocks until
// the batch is done and returns the finished job: Completed if every image
// was processed and succeeded, Failed if every image was dispatched but any
// error was recorded, Cancelled if CancelJob was called or the context
// ended before every image could be dispatched.
//
// Results are re-sorted by original image index before being attached, so
// output order is independent of completion order. Per-image errors never
// propagate out of this call; they are aggregated on the job.
func (s *Scheduler) ProcessBatch(ctx context.Context, images []image.Image, processor Processor, onProgress ProgressHandler) (*Job, error) {
	if len(images) > s.config.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d images, limit %d",
			ErrBatchTooLarge, len(images), s.config.MaxBatchSize)
	}

	job := newJob(images)
	s.register(job)
	s.setStatus(job, StatusProcessing)

	total := len(images)
	if total == 0 {
		s.finish(job)
		return job, nil
	}

	completions := make(chan completion)

	// Fan out processor calls, gated by the semaphore. Dispatching stops
	// when the job is cancelled or the context ends; in-flight calls are
	// left to finish on their own.
	go func() {
		sem := semaphore.NewWeighted(int64(s.config.MaxConcurrent))
		var wg sync.WaitGroup

		for i, img := range images {
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			if ctx.Err() != nil || s.isCancelled(job.ID) {
				sem.Release(1)
				break
			}

			wg.Add(1)
			go func(index int, img image.Image) {
				defer wg.Done()
				defer sem.Release(1)

				structure, err := processor(ctx, index, img)
				completions <- completion{index: index, structure: structure, err: err}
			}(i, img)
		}

		wg.Wait()
		close(completions)
	}()

	// Single coordinating loop: only it mutates the job while workers run.
	for c := range completions {
		progress, ok := s.recordCompletion(job, c, total)
		if ok && onProgress != nil {
			onProgress(progress)
		}
	}

	s.finish(job)
	return job, nil
}

// recordCompletion folds one processor outcome into the job. Completions
// arriving after cancellation are dropped.
func (s *Scheduler) recordCompletion(job *Job, c completion, total int) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Status == StatusCancelled {
		return 0, false
	}

	if c.err != nil {
		job.Errors = append(job.Errors, classifyError(c.index, c.err))
	} else {
		job.Results = append(job.Results, Result{ImageIndex: c.index, Structure: c.structure})
	}

	done := len(job.Results) + len(job.Errors)
	job.Progress = float64(done) / float64(total)
	return job.Progress, true
}

// finish settles a job's terminal state and moves it to the completed set.
// Cancelled jobs keep their status and have already been moved. A job whose
// dispatch stopped early (context cancelled mid-run) is marked Cancelled
// with its partial results and true progress intact.
func (s *Scheduler) finish(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.Status == StatusCancelled {
		return
	}

	sort.Slice(job.Results, func(i, j int) bool {
		return job.Results[i].ImageIndex < job.Results[j].ImageIndex
	})

	done := len(job.Results) + len(job.Errors)
	switch {
	case done < len(job.Images):
		job.Status = StatusCancelled
	case len(job.Errors) == 0:
		job.Status = StatusCompleted
		job.Progress = 1.0
	default:
		job.Status = StatusFailed
	}
	s.moveToCompletedLocked(job)
}

// CancelJob cancels a queued or processing job. Cancellation is
// cooperative: no new processor calls are dispatched, but calls already in
// flight run to completion and their outcomes are discarded. Cancelling a
// finished job is an error.
func (s *Scheduler) CancelJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.byID[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if job.terminal() {
		return fmt.Errorf("job %s already %s", id, job.Status)
	}

	job.Status = StatusCancelled
	s.moveToCompletedLocked(job)
	return nil
}

// PrioritizeJob moves a job to the front of the active ordering. Work
// already dispatched inside any job is not preempted.
func (s *Scheduler) PrioritizeJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, job := range s.active {
		if job.ID == id {
			copy(s.active[1:i+1], s.active[:i])
			s.active[0] = job
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrJobNotFound, id)
}

// TrackProgress returns a job's current progress, searching both the
// active and completed sets. Unknown jobs report 0.
func (s *Scheduler) TrackProgress(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if job, exists := s.byID[id]; exists {
		return job.Progress
	}
	return 0.0
}

// ActiveJobs returns a snapshot of the active jobs in priority order.
func (s *Scheduler) ActiveJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, len(s.active))
	copy(jobs, s.active)
	return jobs
}

// QueueStatus returns a point-in-time snapshot of job counts.
func (s *Scheduler) QueueStatus() QueueStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := QueueStatus{
		Active:    len(s.active),
		Completed: len(s.completed),
	}
	for _, job := range s.active {
		switch job.Status {
		case StatusQueued:
			status.Queued++
		case StatusProcessing:
			status.Processing++
		}
	}
	return status
}

func (s *Scheduler) register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = append(s.active, job)
	s.byID[job.ID] = job
}

func (s *Scheduler) setStatus(job *Job, status JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.Status == StatusCancelled {
		return
	}
	job.Status = status
}

func (s *Scheduler) isCancelled(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.byID[id]
	return exists && job.Status == StatusCancelled
}

// moveToCompletedLocked removes a job from the active list and files it in
// the completed set. Callers must hold s.mu.
func (s *Scheduler) moveToCompletedLocked(job *Job) {
	for i, active := range s.active {
		if active.ID == job.ID {
			s.active = append(s.active[:i], s.active[i+1:]...)
			break
		}
	}
	s.completed[job.ID] = job
}
