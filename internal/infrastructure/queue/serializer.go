package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/api/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned for jobs that cannot run because the serializer shut down.
var ErrStopped = errors.New("serializer stopped")

type job struct {
	ctx  context.Context
	key  string
	fn   func(ctx context.Context) error
	done chan error
}

// VendorSerializer routes trust mutations to a fixed set of workers using
// consistent hashing on the vendor ID. Jobs for the same vendor always land
// on the same worker and run one at a time, in arrival order.
type VendorSerializer struct {
	workers []chan job
	stopped chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

// NewVendorSerializer creates a serializer with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewVendorSerializer(numWorkers int, log zerolog.Logger) *VendorSerializer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &VendorSerializer{
		workers: make([]chan job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range s.workers {
		s.workers[i] = make(chan job, channelBuffer)
	}
	return s
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// queued jobs that never ran then fail with ErrStopped.
func (s *VendorSerializer) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i, ch := range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runWorker(ctx, i, ch)
		}()
	}
	go func() {
		wg.Wait()
		s.once.Do(func() { close(s.stopped) })
	}()
}

// Do runs fn on the worker owning key and waits for its result. If ctx ends
// first Do returns ctx.Err(); fn then observes the same cancelled context.
func (s *VendorSerializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}
	idx := s.shardIndex(key)

	select {
	case s.workers[idx] <- j:
		metrics.TrustQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(s.workers[idx])))
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
}

// shardIndex maps a vendor ID deterministically to a worker index.
func (s *VendorSerializer) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.workers)))
}

func (s *VendorSerializer) runWorker(ctx context.Context, id int, ch <-chan job) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			metrics.TrustQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			j.done <- s.run(id, j)
		}
	}
}

func (s *VendorSerializer) run(worker int, j job) (err error) {
	if err := j.ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("key", j.key).Int("worker_id", worker).Msg("trust job panicked")
			err = errors.New("trust job panicked")
		}
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.TrustJobDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	if err = j.fn(j.ctx); err != nil {
		s.log.Debug().Err(err).Str("key", j.key).Int("worker_id", worker).Msg("trust job failed")
	}
	return err
}
