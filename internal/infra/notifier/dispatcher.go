package notifier

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/metrics"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
)

type Sink interface {
	Notify(ctx context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp)
}

type job struct {
	ctx     context.Context
	fed     domain.Federation
	targets []domain.FederationMember
	op      domain.NotificationOp
}

// Dispatcher runs fan-outs after the caller has returned. Jobs for one federation always land
// on the same worker so members observe changes in commit order.
type Dispatcher struct {
	sink   Sink
	shards []chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	logger zerolog.Logger
}

func NewDispatcher(sink Sink, queueSize, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	perShard := queueSize / workers
	if perShard <= 0 {
		perShard = 1
	}
	d := &Dispatcher{
		sink:   sink,
		shards: make([]chan job, workers),
		logger: log.WithComponent("notifier"),
	}
	for i := range d.shards {
		d.shards[i] = make(chan job, perShard)
		d.wg.Add(1)
		go d.run(d.shards[i])
	}
	return d
}

// Notify enqueues the fan-out. The request context's cancellation is dropped so the push
// outlives the HTTP request. A full shard blocks the caller until its worker catches up, so a
// federation's changes are never delivered out of order. After Close the fan-out runs inline
// once the queued ones have finished.
func (d *Dispatcher) Notify(ctx context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp) {
	j := job{ctx: context.WithoutCancel(ctx), fed: fed, targets: targets, op: op}

	d.mu.RLock()
	if !d.closed {
		queue := d.shards[d.shardFor(fed.ID)]
		metrics.NotificationQueueDepth.Inc()
		select {
		case queue <- j:
		default:
			d.logger.Warn().Str("federation_id", fed.ID).Msg("notification queue full; waiting for worker")
			queue <- j
		}
		d.mu.RUnlock()
		return
	}
	d.mu.RUnlock()

	d.wg.Wait()
	d.sink.Notify(j.ctx, j.fed, j.targets, j.op)
}

func (d *Dispatcher) shardFor(federationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(federationID))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) run(queue <-chan job) {
	defer d.wg.Done()
	for j := range queue {
		metrics.NotificationQueueDepth.Dec()
		d.sink.Notify(j.ctx, j.fed, j.targets, j.op)
	}
}

// Close stops intake and waits for queued fan-outs to finish or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.shards {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.logger.Warn().Msg("notification drain interrupted")
		return ctx.Err()
	}
}
