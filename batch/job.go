// Package batch runs many chart-scan pipelines concurrently with bounded
// parallelism, per-image failure isolation, cooperative cancellation, and
// progress reporting.
package batch

import (
	"errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// JobStatus represents the current state of a batch job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Recoverable per-image failures: the batch records them and keeps going.
var (
	// ErrNoTextFound indicates recognition produced no usable text.
	ErrNoTextFound = errors.New("no usable text found")

	// ErrUnreadableImage indicates the image's pixel data could not be read.
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrBatchTooLarge rejects a batch before any processing starts.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrJobNotFound is returned when a job ID is not known to the scheduler.
	ErrJobNotFound = errors.New("job not found")
)

// Result is the successful outcome of processing one image.
type Result struct {
	// ImageIndex is the image's position in the original batch.
	ImageIndex int

	// Structure is the analyzed chart layout for the image.
	Structure *model.LayoutStructure
}

// Error records one failed image within a batch.
type Error struct {
	// ImageIndex is the image's position in the original batch.
	ImageIndex int

	// Message describes the failure.
	Message string

	// Recoverable is true for failures that do not call the rest of the
	// batch into question (no text found, unreadable image). It is recorded
	// for callers; the batch continues processing either way.
	Recoverable bool
}

// Job tracks one batch through its lifecycle. While a job is running its
// fields are owned by the scheduler; use Scheduler.TrackProgress for
// concurrent reads.
type Job struct {
	// ID identifies the job.
	ID string

	// Images is the batch input, fixed at creation.
	Images []image.Image

	// Status is the job's lifecycle state.
	Status JobStatus

	// Progress is the completed fraction, 0 to 1, monotonically
	// non-decreasing while the job is live.
	Progress float64

	// Results holds per-image outcomes. They arrive in completion order and
	// are re-sorted by original image index when the job finishes.
	Results []Result

	// Errors holds per-image failures in completion order.
	Errors []Error

	// StartTime is when the job was created.
	StartTime time.Time
}

// newJob creates a queued job for the given images.
func newJob(images []image.Image) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Images:    images,
		Status:    StatusQueued,
		StartTime: time.Now(),
	}
}

// terminal reports whether the job has reached a final state.
func (j *Job) terminal() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// classifyError wraps a processor failure as a batch error for one image.
func classifyError(index int, err error) Error {
	return Error{
		ImageIndex:  index,
		Message:     err.Error(),
		Recoverable: errors.Is(err, ErrNoTextFound) || errors.Is(err, ErrUnreadableImage),
	}
}

// QueueStatus is a point-in-time snapshot of the scheduler's job counts.
type QueueStatus struct {
	// Active is the number of jobs not yet finished.
	Active int

	// Queued is the number of active jobs still waiting to dispatch.
	Queued int

	// Processing is the number of active jobs currently dispatching.
	Processing int

	// Completed is the number of finished jobs, whatever their outcome.
	Completed int
}
