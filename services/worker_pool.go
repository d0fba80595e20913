// Package services holds the discovery coordinator and the background
// machinery around it: the notification worker pool, the scheduled refresh,
// health checks and rate limiting.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/NomadCrew/neoevents/config"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// Job is a unit of fire-and-forget work.
type Job struct {
	Name    string
	Execute func(ctx context.Context) error
}

// WorkerPool runs jobs on a fixed number of goroutines fed by a bounded
// queue. Submissions never block; a full queue drops the job.
type WorkerPool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.WorkerPoolConfig
	metrics *workerPoolMetrics
	log     *zap.SugaredLogger

	mu      sync.Mutex
	running bool
}

type workerPoolMetrics struct {
	queued   prometheus.Gauge
	busy     prometheus.Gauge
	done     *prometheus.CounterVec
	dropped  prometheus.Counter
	duration prometheus.Histogram
}

var (
	wpMetrics     *workerPoolMetrics
	wpMetricsOnce sync.Once
	wpRegisterer  = prometheus.DefaultRegisterer
)

func newWorkerPoolMetrics() *workerPoolMetrics {
	wpMetricsOnce.Do(func() {
		f := promauto.With(wpRegisterer)
		wpMetrics = &workerPoolMetrics{
			queued: f.NewGauge(prometheus.GaugeOpts{
				Name: "neoevents_worker_pool_queue_depth",
				Help: "Jobs waiting in the notification queue",
			}),
			busy: f.NewGauge(prometheus.GaugeOpts{
				Name: "neoevents_worker_pool_busy_workers",
				Help: "Workers currently executing a job",
			}),
			done: f.NewCounterVec(prometheus.CounterOpts{
				Name: "neoevents_worker_pool_jobs_total",
				Help: "Executed jobs by result",
			}, []string{"result"}),
			dropped: f.NewCounter(prometheus.CounterOpts{
				Name: "neoevents_worker_pool_dropped_jobs_total",
				Help: "Jobs dropped because the queue was full",
			}),
			duration: f.NewHistogram(prometheus.HistogramOpts{
				Name:    "neoevents_worker_pool_job_duration_seconds",
				Help:    "Job execution time",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			}),
		}
	})
	return wpMetrics
}

// resetWorkerPoolMetricsForTesting points the metrics at a fresh registry.
func resetWorkerPoolMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	wpRegisterer = reg
	wpMetrics = nil
	wpMetricsOnce = sync.Once{}
	return reg
}

// NewWorkerPool builds a stopped pool. Call Start before submitting.
func NewWorkerPool(cfg config.WorkerPoolConfig) *WorkerPool {
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobs:    make(chan Job, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		metrics: newWorkerPoolMetrics(),
		log:     logger.GetLogger().Named("worker-pool"),
	}
}

// Start launches the workers. Repeated calls are no-ops.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.running {
		wp.log.Warn("Worker pool already running")
		return
	}
	wp.running = true

	wp.log.Infow("Starting worker pool", "maxWorkers", wp.cfg.MaxWorkers, "queueSize", wp.cfg.QueueSize)
	for i := 0; i < wp.cfg.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.work(i)
	}
}

func (wp *WorkerPool) work(id int) {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.run(id, job)
		}
	}
}

func (wp *WorkerPool) run(workerID int, job Job) {
	wp.metrics.queued.Dec()
	wp.metrics.busy.Inc()
	defer wp.metrics.busy.Dec()

	ctx, cancel := context.WithTimeout(wp.ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Execute(ctx)
	elapsed := time.Since(start)
	wp.metrics.duration.Observe(elapsed.Seconds())

	if err != nil {
		wp.metrics.done.WithLabelValues("error").Inc()
		wp.log.Errorw("Job failed", "job", job.Name, "workerId", workerID, "duration", elapsed, "error", err)
		return
	}
	wp.metrics.done.WithLabelValues("success").Inc()
	wp.log.Debugw("Job completed", "job", job.Name, "workerId", workerID, "duration", elapsed)
}

// Submit queues job and reports whether it was accepted. It returns false
// when the queue is full or the pool is not running.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if !wp.running {
		wp.log.Warnw("Job rejected, worker pool not running", "job", job.Name)
		return false
	}

	select {
	case wp.jobs <- job:
		wp.metrics.queued.Inc()
		return true
	default:
		wp.metrics.dropped.Inc()
		wp.log.Warnw("Job dropped, queue full", "job", job.Name, "queueSize", wp.cfg.QueueSize)
		return false
	}
}

// Shutdown stops accepting jobs, lets workers drain the queue and waits for
// them until ctx expires.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if !wp.running {
		wp.mu.Unlock()
		return nil
	}
	wp.running = false
	close(wp.jobs)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.log.Info("Worker pool stopped")
		return nil
	case <-ctx.Done():
		wp.cancel()
		wp.log.Warn("Worker pool shutdown timed out")
		return ctx.Err()
	}
}

// ShutdownTimeout returns the configured grace period for Shutdown.
func (wp *WorkerPool) ShutdownTimeout() time.Duration {
	return time.Duration(wp.cfg.ShutdownTimeoutSeconds) * time.Second
}

func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobs)
}

func (wp *WorkerPool) IsRunning() bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.running
}
