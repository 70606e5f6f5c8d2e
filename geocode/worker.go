package geocode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"events-venues/data/models"
)

// VenueStore is the part of the entity store the worker needs.
type VenueStore interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
	UpdateVenueLocation(ctx context.Context, id int64, postcode string, lat, lng float64) error
}

// Job asks for one venue's postcode to be resolved.
type Job struct {
	VenueID  int64
	Postcode string
}

// Options tunes the worker pool.
type Options struct {
	Workers   int
	QueueSize int
	// MaxElapsed bounds the retries of a single job.
	MaxElapsed time.Duration
	// InitialInterval is the first retry delay; zero keeps the backoff default.
	InitialInterval time.Duration
	// BackfillInterval re-runs Backfill while the pool is started, which
	// recovers jobs dropped on a full queue. Zero disables it.
	BackfillInterval time.Duration
}

// Worker resolves venue coordinates off the request path. Jobs are retried
// with exponential backoff until they succeed, fail permanently or run out
// of time. Jobs dropped on a full queue or still queued on Stop are picked
// up by the next Backfill.
type Worker struct {
	geocoder Geocoder
	store    VenueStore
	metrics  *Metrics
	log      *zap.Logger
	opts     Options

	queue  chan Job
	wg     sync.WaitGroup
	mu     sync.Mutex
	cancel context.CancelFunc

	pendingMu sync.Mutex
	pending   map[Job]struct{}
}

// NewWorker creates a stopped worker pool. A nil metrics gets an
// unregistered set.
func NewWorker(g Geocoder, store VenueStore, metrics *Metrics, log *zap.Logger, opts Options) *Worker {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Worker{
		geocoder: g,
		store:    store,
		metrics:  metrics,
		log:      log,
		opts:     opts,
		queue:    make(chan Job, opts.QueueSize),
		pending:  make(map[Job]struct{}),
	}
}

// Start launches the worker goroutines. They run until ctx is cancelled or
// Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.opts.Workers; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
	if w.opts.BackfillInterval > 0 {
		w.wg.Add(1)
		go w.backfillEvery(ctx, w.opts.BackfillInterval)
	}
	w.log.Info("geocode workers started",
		zap.Int("workers", w.opts.Workers),
		zap.Int("queue_size", w.opts.QueueSize),
		zap.Duration("backfill_interval", w.opts.BackfillInterval))
}

// Stop cancels in-flight jobs and waits for the workers to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()
	w.log.Info("geocode workers stopped", zap.Int("abandoned_jobs", len(w.queue)))
}

// Enqueue schedules a lookup without blocking. A job that is already queued
// or running is not queued twice. It reports false when the queue is full
// and the job was dropped.
func (w *Worker) Enqueue(venueID int64, postcode string) bool {
	job := Job{VenueID: venueID, Postcode: postcode}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if _, ok := w.pending[job]; ok {
		return true
	}

	select {
	case w.queue <- job:
		w.pending[job] = struct{}{}
		w.metrics.SetQueueDepth(len(w.queue))
		return true
	default:
		w.metrics.IncJobsTotal(StatusDropped)
		w.metrics.IncJobErrors(ErrorTypeQueueFull)
		w.log.Warn("geocode queue full, dropping job", zap.Int64("venue_id", venueID))
		return false
	}
}

// Backfill enqueues every venue that still has default coordinates and
// returns how many are now queued or running.
func (w *Worker) Backfill(ctx context.Context) (int, error) {
	venues, err := w.store.ListVenues(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range venues {
		if v.Located() {
			continue
		}
		if !w.Enqueue(v.ID, v.Postcode) {
			break
		}
		n++
	}
	w.log.Info("geocode backfill queued", zap.Int("venues", n))
	return n, nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			w.metrics.SetQueueDepth(len(w.queue))
			w.process(ctx, job)
			w.done(job)
		}
	}
}

func (w *Worker) done(job Job) {
	w.pendingMu.Lock()
	delete(w.pending, job)
	w.pendingMu.Unlock()
}

func (w *Worker) backfillEvery(ctx context.Context, interval time.Duration) {
	defer w.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Backfill(ctx); err != nil && ctx.Err() == nil {
				w.log.Warn("periodic geocode backfill failed", zap.Error(err))
			}
		}
	}
}

// process runs one job to completion and returns its outcome.
func (w *Worker) process(ctx context.Context, job Job) string {
	start := time.Now()
	log := w.log.With(zap.Int64("venue_id", job.VenueID), zap.String("postcode", job.Postcode))

	var (
		point   Point
		found   bool
		skipped bool
	)
	op := func() error {
		if !found {
			p, ok, err := w.geocoder.Lookup(ctx, job.Postcode)
			if err != nil {
				w.metrics.IncJobErrors(ErrorTypeLookup)
				if errors.Is(err, ErrRejected) {
					return backoff.Permanent(err)
				}
				return err
			}
			if !ok {
				return nil
			}
			point, found = p, true
		}

		err := w.store.UpdateVenueLocation(ctx, job.VenueID, job.Postcode, point.Latitude, point.Longitude)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, models.ErrNotFound):
			// The venue was deleted or moved to another postcode after the
			// job was queued.
			skipped = true
			return nil
		default:
			w.metrics.IncJobErrors(ErrorTypeStore)
			return err
		}
	}

	notify := func(err error, wait time.Duration) {
		log.Debug("geocode attempt failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	err := backoff.RetryNotify(op, backoff.WithContext(w.newBackOff(), ctx), notify)
	w.metrics.ObserveJobDuration(time.Since(start).Seconds())

	var status string
	switch {
	case err != nil:
		status = StatusFailure
		log.Error("geocode job failed", zap.Error(err))
	case skipped:
		status = StatusSkipped
		log.Info("venue gone or postcode changed before geocoding finished")
	case !found:
		status = StatusNoResult
		log.Info("no geocoding result for postcode")
	default:
		status = StatusLocated
		log.Info("venue located", zap.Float64("latitude", point.Latitude), zap.Float64("longitude", point.Longitude))
	}
	w.metrics.IncJobsTotal(status)
	return status
}

func (w *Worker) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if w.opts.InitialInterval > 0 {
		b.InitialInterval = w.opts.InitialInterval
	}
	b.MaxElapsedTime = w.opts.MaxElapsed
	b.Reset()
	return b
}
