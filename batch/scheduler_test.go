package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ColbyCorcoran/Lyra-sub006/model"
)

// okStructure is a minimal successful analysis result for tests.
func okStructure() *model.LayoutStructure {
	return &model.LayoutStructure{LayoutType: model.LayoutInline}
}

// succeedAfter returns a processor that sleeps briefly and succeeds.
func succeedAfter(d time.Duration) Processor {
	return func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		time.Sleep(d)
		return okStructure(), nil
	}
}

func TestProcessBatch_BoundedConcurrency(t *testing.T) {
	var active, peak int32

	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		current := atomic.AddInt32(&active, 1)
		for {
			observed := atomic.LoadInt32(&peak)
			if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return okStructure(), nil
	}

	scheduler := NewScheduler()
	job, err := scheduler.ProcessBatch(context.Background(), make([]image.Image, 10), processor, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Errorf("Observed %d simultaneous calls, limit is 3", p)
	}
	if len(job.Results) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(job.Results))
	}
	for i, r := range job.Results {
		if r.ImageIndex != i {
			t.Errorf("Result %d has image index %d; results must be in original order", i, r.ImageIndex)
		}
	}
	if job.Status != StatusCompleted {
		t.Errorf("Expected completed status, got %s", job.Status)
	}
}

func TestProcessBatch_RejectsOversizedBatch(t *testing.T) {
	var calls int32
	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		atomic.AddInt32(&calls, 1)
		return okStructure(), nil
	}

	scheduler := NewScheduler()
	job, err := scheduler.ProcessBatch(context.Background(), make([]image.Image, 51), processor, nil)

	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("Expected ErrBatchTooLarge, got %v", err)
	}
	if job != nil {
		t.Error("Expected no job for a rejected batch")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("Expected zero processor calls, got %d", calls)
	}
	if status := scheduler.QueueStatus(); status.Active != 0 || status.Completed != 0 {
		t.Errorf("Rejected batch must not be registered: %+v", status)
	}
}

func TestProcessBatch_ErrorIsolation(t *testing.T) {
	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		if index == 2 {
			return nil, fmt.Errorf("recognizing image: %w", ErrNoTextFound)
		}
		return okStructure(), nil
	}

	scheduler := NewScheduler()
	job, err := scheduler.ProcessBatch(context.Background(), make([]image.Image, 5), processor, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if job.Status != StatusFailed {
		t.Errorf("Expected failed status, got %s", job.Status)
	}
	if len(job.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(job.Errors))
	}
	if job.Errors[0].ImageIndex != 2 {
		t.Errorf("Expected error at index 2, got %d", job.Errors[0].ImageIndex)
	}
	if !job.Errors[0].Recoverable {
		t.Error("Expected no-text-found to classify as recoverable")
	}
	if len(job.Results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(job.Results))
	}
	wantIndexes := []int{0, 1, 3, 4}
	for i, r := range job.Results {
		if r.ImageIndex != wantIndexes[i] {
			t.Errorf("Result %d: expected image index %d, got %d", i, wantIndexes[i], r.ImageIndex)
		}
	}
}

func TestProcessBatch_NonRecoverableStillContinues(t *testing.T) {
	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		if index == 1 {
			return nil, errors.New("recognizer crashed")
		}
		return okStructure(), nil
	}

	scheduler := NewScheduler()
	job, _ := scheduler.ProcessBatch(context.Background(), make([]image.Image, 5), processor, nil)

	if len(job.Errors) != 1 || job.Errors[0].Recoverable {
		t.Errorf("Expected one non-recoverable error, got %+v", job.Errors)
	}
	// The recoverability flag does not halt the batch.
	if len(job.Results) != 4 {
		t.Errorf("Expected remaining 4 images processed, got %d results", len(job.Results))
	}
	if job.Status != StatusFailed {
		t.Errorf("Expected failed status, got %s", job.Status)
	}
}

func TestProcessBatch_ProgressReporting(t *testing.T) {
	var mu sync.Mutex
	var reported []float64

	scheduler := NewScheduler()
	_, err := scheduler.ProcessBatch(
		context.Background(),
		make([]image.Image, 10),
		succeedAfter(time.Millisecond),
		func(progress float64) {
			mu.Lock()
			reported = append(reported, progress)
			mu.Unlock()
		},
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(reported) != 10 {
		t.Fatalf("Expected 10 progress updates, got %d", len(reported))
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] < reported[i-1] {
			t.Errorf("Progress decreased: %f after %f", reported[i], reported[i-1])
		}
	}
	if reported[len(reported)-1] != 1.0 {
		t.Errorf("Expected final progress exactly 1.0, got %f", reported[len(reported)-1])
	}
}

func TestProcessBatch_EmptyBatch(t *testing.T) {
	scheduler := NewScheduler()
	job, err := scheduler.ProcessBatch(context.Background(), nil, succeedAfter(0), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if job.Status != StatusCompleted {
		t.Errorf("Expected completed status, got %s", job.Status)
	}
	if job.Progress != 1.0 {
		t.Errorf("Expected progress 1.0, got %f", job.Progress)
	}
}

func TestProcessBatch_ContextCancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		cancel()
		<-ctx.Done()
		return okStructure(), nil
	}

	scheduler := NewScheduler()
	job, err := scheduler.ProcessBatch(ctx, make([]image.Image, 10), processor, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	done := len(job.Results) + len(job.Errors)
	if done == 0 || done >= 10 {
		t.Fatalf("Expected a partially processed batch, got %d outcomes", done)
	}
	if job.Status != StatusCancelled {
		t.Errorf("Interrupted batch must not report success, got %s", job.Status)
	}
	if job.Progress != float64(done)/10.0 {
		t.Errorf("Expected progress %f for %d of 10 images, got %f",
			float64(done)/10.0, done, job.Progress)
	}
	if status := scheduler.QueueStatus(); status.Active != 0 || status.Completed != 1 {
		t.Errorf("Interrupted job must still move to the completed set: %+v", status)
	}
}

func TestCancelJob_StopsDispatch(t *testing.T) {
	release := make(chan struct{})
	var calls int32

	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return okStructure(), nil
	}

	scheduler := NewSchedulerWithConfig(SchedulerConfig{MaxConcurrent: 1, MaxBatchSize: 50})

	done := make(chan *Job)
	go func() {
		job, _ := scheduler.ProcessBatch(context.Background(), make([]image.Image, 5), processor, nil)
		done <- job
	}()

	// Wait until the first processor call is in flight.
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	jobs := scheduler.ActiveJobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 active job, got %d", len(jobs))
	}
	if err := scheduler.CancelJob(jobs[0].ID); err != nil {
		t.Fatalf("CancelJob failed: %v", err)
	}

	close(release)
	job := <-done

	if job.Status != StatusCancelled {
		t.Errorf("Expected cancelled status, got %s", job.Status)
	}
	// Cancellation prevents new dispatches; the in-flight call completes.
	if c := atomic.LoadInt32(&calls); c != 1 {
		t.Errorf("Expected exactly 1 processor call, got %d", c)
	}
	if status := scheduler.QueueStatus(); status.Active != 0 || status.Completed != 1 {
		t.Errorf("Cancelled job must move to completed set: %+v", status)
	}
}

func TestCancelJob_Unknown(t *testing.T) {
	scheduler := NewScheduler()
	if err := scheduler.CancelJob("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestCancelJob_FinishedJob(t *testing.T) {
	scheduler := NewScheduler()
	job, _ := scheduler.ProcessBatch(context.Background(), make([]image.Image, 2), succeedAfter(0), nil)

	if err := scheduler.CancelJob(job.ID); err == nil {
		t.Error("Expected cancelling a finished job to fail")
	}
}

func TestPrioritizeJob(t *testing.T) {
	release := make(chan struct{})
	var started int32

	processor := func(ctx context.Context, index int, img image.Image) (*model.LayoutStructure, error) {
		atomic.AddInt32(&started, 1)
		<-release
		return okStructure(), nil
	}

	scheduler := NewScheduler()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.ProcessBatch(context.Background(), make([]image.Image, 1), processor, nil)
		}()
	}

	for atomic.LoadInt32(&started) < 2 {
		time.Sleep(time.Millisecond)
	}

	jobs := scheduler.ActiveJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 active jobs, got %d", len(jobs))
	}

	second := jobs[1].ID
	if err := scheduler.PrioritizeJob(second); err != nil {
		t.Fatalf("PrioritizeJob failed: %v", err)
	}
	if got := scheduler.ActiveJobs()[0].ID; got != second {
		t.Errorf("Expected job %s at front, got %s", second, got)
	}

	if err := scheduler.PrioritizeJob("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}

	close(release)
	wg.Wait()
}

func TestTrackProgress(t *testing.T) {
	scheduler := NewScheduler()

	if p := scheduler.TrackProgress("missing"); p != 0.0 {
		t.Errorf("Expected 0.0 for unknown job, got %f", p)
	}

	job, _ := scheduler.ProcessBatch(context.Background(), make([]image.Image, 3), succeedAfter(0), nil)
	if p := scheduler.TrackProgress(job.ID); p != 1.0 {
		t.Errorf("Expected 1.0 for finished job, got %f", p)
	}
}

func TestQueueStatus(t *testing.T) {
	scheduler := NewScheduler()

	if status := scheduler.QueueStatus(); status != (QueueStatus{}) {
		t.Errorf("Expected empty status, got %+v", status)
	}

	scheduler.ProcessBatch(context.Background(), make([]image.Image, 2), succeedAfter(0), nil)
	scheduler.ProcessBatch(context.Background(), make([]image.Image, 2), succeedAfter(0), nil)

	status := scheduler.QueueStatus()
	if status.Active != 0 || status.Completed != 2 {
		t.Errorf("Expected 2 completed jobs, got %+v", status)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err         error
		recoverable bool
	}{
		{ErrNoTextFound, true},
		{ErrUnreadableImage, true},
		{fmt.Errorf("wrapped: %w", ErrUnreadableImage), true},
		{errors.New("engine failure"), false},
	}

	for _, tc := range cases {
		e := classifyError(7, tc.err)
		if e.ImageIndex != 7 {
			t.Errorf("Expected index 7, got %d", e.ImageIndex)
		}
		if e.Recoverable != tc.recoverable {
			t.Errorf("Error %q: expected recoverable=%v", tc.err, tc.recoverable)
		}
	}
}
