package optimizer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mpatel-hpc/topoflow/collective"
	"github.com/mpatel-hpc/topoflow/report"
	"github.com/mpatel-hpc/topoflow/substrate"
	"github.com/mpatel-hpc/topoflow/topology"
)

// maxCount bounds Count so count*datatypeSize never overflows int
// (spec.md §7 kind 2).
const maxCount = math.MaxInt / datatypeSize

// Optimizer is the single decision surface for a communicator's
// collective calls (spec.md §4.D): it is constructed once per
// communicator with a Model and Config, then OptimizeBroadcast/
// OptimizeReduce/OptimizeAllreduce/OptimizeAllgather each run the
// DECIDE -> DISPATCH -> EXECUTE -> REPORT sequence against it.
//
// Every exported method is safe for concurrent use by goroutines
// standing in for distinct communicators sharing one process, per
// spec.md §5: the only mutable state an Optimizer owns is its decision
// cache (internally mutex-guarded) and model (guarded by modelMu below,
// swapped only by Reconfigure).
type Optimizer struct {
	sub substrate.Substrate
	cfg Config

	modelMu sync.RWMutex
	model   *topology.Model

	cache   *decisionCache
	metrics *metrics
	writer  report.RowWriter
	logger  zerolog.Logger
}

// Opt customizes an Optimizer's optional collaborators before
// construction: the CSV report sink, a structured logger, and the
// Prometheus registry its decision/cache-hit counters register against.
// Following this repository's resolve-once functional-options idiom.
type Opt func(*optConfig)

type optConfig struct {
	writer   report.RowWriter
	logger   zerolog.Logger
	registry *prometheus.Registry
}

func newOptConfig(opts ...Opt) *optConfig {
	c := &optConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithWriter attaches a report.RowWriter: every completed collective
// call emits one report.Row to it (spec.md §6's persisted artifact).
// Unset, no rows are emitted.
func WithWriter(w report.RowWriter) Opt {
	return func(c *optConfig) { c.writer = w }
}

// WithLogger attaches a structured logger for fallback and anomaly
// notices. Unset, the Optimizer logs nothing (zerolog.Nop()).
func WithLogger(l zerolog.Logger) Opt {
	return func(c *optConfig) { c.logger = l }
}

// WithMetricsRegistry registers this Optimizer's decision and
// cache-hit counters against reg (never prometheus.DefaultRegisterer,
// so multiple communicators in one process never collide, per spec.md
// §1.1). Unset, metrics are disabled.
func WithMetricsRegistry(reg *prometheus.Registry) Opt {
	return func(c *optConfig) { c.registry = reg }
}

// New constructs an Optimizer over sub and model with cfg's thresholds
// and cache size, applying opts. A nil model is permitted (selection
// policies that would otherwise consult topology fall back to their
// flat-topology default).
func New(sub substrate.Substrate, model *topology.Model, cfg Config, opts ...Opt) (*Optimizer, error) {
	oc := newOptConfig(opts...)
	m, err := newMetrics(oc.registry)
	if err != nil {
		return nil, fmt.Errorf("optimizer.New: %w", err)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	return &Optimizer{
		sub:     sub,
		cfg:     cfg,
		model:   model,
		cache:   newDecisionCache(cfg.CacheSize),
		metrics: m,
		writer:  oc.writer,
		logger:  oc.logger,
	}, nil
}

// NetworkCharacteristics returns the read-only Model handle backing this
// Optimizer's selection policies, per spec.md §6.
func (o *Optimizer) NetworkCharacteristics() *topology.Model {
	return o.currentModel()
}

// Reconfigure replaces the backing model (a fresh measure.Harness.
// Calibrate pass, typically) and invalidates the decision cache, per
// spec.md §9's "ignore cache on first call after model reconfiguration."
func (o *Optimizer) Reconfigure(model *topology.Model) {
	o.modelMu.Lock()
	o.model = model
	o.modelMu.Unlock()
	o.cache.invalidate()
}

func (o *Optimizer) currentModel() *topology.Model {
	o.modelMu.RLock()
	defer o.modelMu.RUnlock()
	return o.model
}

// validateCount rejects a count that would overflow count*datatypeSize
// or that exceeds the buffer actually supplied (spec.md §7 kind 2).
func validateCount(count, bufLen int) error {
	if count < 0 {
		return fmt.Errorf("count must be non-negative: %w", ErrSizeMismatch)
	}
	if count > maxCount {
		return ErrCountOverflow
	}
	if bufLen < count {
		return fmt.Errorf("buffer holds %d elements, count requires %d: %w", bufLen, count, ErrSizeMismatch)
	}
	return nil
}

// lookupOrDecide is DECIDE with the bounded-LRU cache spec.md §4.D
// names spliced in front of it: a hit skips decide() entirely, a miss
// runs it and caches the result keyed on (kind, N, bucket(bytes)).
func (o *Optimizer) lookupOrDecide(kind opKind, n, bytes int, op collective.ReduceOp) decision {
	key := cacheKey{op: kind, n: n, m: bucket(bytes)}
	if dec, ok := o.cache.get(key); ok {
		o.metrics.recordCache(true)
		return dec
	}
	o.metrics.recordCache(false)
	dec := decide(kind, n, bytes, op, o.cfg, o.currentModel())
	o.cache.put(key, dec)
	return dec
}

// emit is the REPORT stage: a best-effort CSV row, logged (not
// returned) on failure, since a report-sink error must never fail an
// otherwise-successful collective call.
func (o *Optimizer) emit(op string, root int, bytes int64, participants int, algorithm string, elapsedSeconds float64) {
	o.metrics.recordDecision(op, algorithm)
	if o.writer == nil {
		return
	}
	row := report.Row{
		Timestamp:       time.Now(),
		Op:              op,
		Root:            root,
		Bytes:           bytes,
		Participants:    participants,
		AlgorithmChosen: algorithm,
		ElapsedUs:       elapsedSeconds * 1e6,
	}
	if err := o.writer.WriteRow(row); err != nil {
		o.logger.Warn().Err(err).Str("op", op).Msg("optimizer: failed to write report row")
	}
}

// OptimizeBroadcast implements spec.md §6's optimize_broadcast: every
// rank calls with the same count and root; on return every rank's buf
// (truncated to count) holds root's pre-call contents.
func (o *Optimizer) OptimizeBroadcast(ctx context.Context, buf []float64, count int, root int) error {
	n := o.sub.Size()
	if root < 0 || root >= n {
		return fmt.Errorf("OptimizeBroadcast: %w", ErrInvalidRoot)
	}
	if err := validateCount(count, len(buf)); err != nil {
		return fmt.Errorf("OptimizeBroadcast: %w", err)
	}
	if n <= 1 || count == 0 {
		return nil
	}
	buf = buf[:count]
	bytes := count * datatypeSize

	dec := o.lookupOrDecide(opBroadcast, n, bytes, 0)

	start := o.sub.Wtime()
	var err error
	switch dec.algorithm {
	case algoScatterAllgather:
		err = collective.ScatterAllgatherBroadcast(ctx, o.sub, buf, root)
	case algoPipeline:
		err = collective.PipelineBroadcast(ctx, o.sub, o.currentModel(), buf, root, dec.segments)
	default:
		err = collective.BinomialBroadcast(ctx, o.sub, buf, root)
	}
	elapsed := o.sub.Wtime() - start
	if err != nil {
		return fmt.Errorf("OptimizeBroadcast: %w", err)
	}
	o.emit("broadcast", root, int64(bytes), n, dec.algorithm, elapsed)
	return nil
}

// OptimizeReduce implements spec.md §6's optimize_reduce: every rank
// calls with its own sendbuf contribution; on return, root's recvbuf
// (truncated to count) holds op folded over every rank's contribution.
// Non-root ranks' recvbuf is untouched.
func (o *Optimizer) OptimizeReduce(ctx context.Context, sendbuf, recvbuf []float64, count int, op collective.ReduceOp, root int) error {
	n := o.sub.Size()
	if root < 0 || root >= n {
		return fmt.Errorf("OptimizeReduce: %w", ErrInvalidRoot)
	}
	if err := validateCount(count, len(sendbuf)); err != nil {
		return fmt.Errorf("OptimizeReduce: %w", err)
	}
	isRoot := o.sub.Rank() == root
	if isRoot {
		if err := validateCount(count, len(recvbuf)); err != nil {
			return fmt.Errorf("OptimizeReduce: %w", err)
		}
	}
	if n <= 1 || count == 0 {
		if isRoot && count > 0 {
			copy(recvbuf[:count], sendbuf[:count])
		}
		return nil
	}

	buf := append([]float64(nil), sendbuf[:count]...)
	bytes := count * datatypeSize

	dec := o.lookupOrDecide(opReduce, n, bytes, op)

	start := o.sub.Wtime()
	var err error
	switch dec.algorithm {
	case algoReduceScatterGather:
		err = collective.ReduceScatterGather(ctx, o.sub, buf, root, op)
	default:
		err = collective.BinomialReduce(ctx, o.sub, buf, root, op)
	}
	elapsed := o.sub.Wtime() - start
	if err != nil {
		return fmt.Errorf("OptimizeReduce: %w", err)
	}
	if isRoot {
		copy(recvbuf[:count], buf)
	}
	o.emit("reduce", root, int64(bytes), n, dec.algorithm, elapsed)
	return nil
}

// OptimizeAllreduce implements spec.md §6's optimize_allreduce: every
// rank calls with its own sendbuf contribution; on return every rank's
// recvbuf (truncated to count) holds op folded over every contribution.
func (o *Optimizer) OptimizeAllreduce(ctx context.Context, sendbuf, recvbuf []float64, count int, op collective.ReduceOp) error {
	n := o.sub.Size()
	if err := validateCount(count, len(sendbuf)); err != nil {
		return fmt.Errorf("OptimizeAllreduce: %w", err)
	}
	if err := validateCount(count, len(recvbuf)); err != nil {
		return fmt.Errorf("OptimizeAllreduce: %w", err)
	}
	if n <= 1 || count == 0 {
		if count > 0 {
			copy(recvbuf[:count], sendbuf[:count])
		}
		return nil
	}

	buf := append([]float64(nil), sendbuf[:count]...)
	bytes := count * datatypeSize

	dec := o.lookupOrDecide(opAllreduce, n, bytes, op)

	start := o.sub.Wtime()
	var err error
	switch dec.algorithm {
	case algoRecursiveDoubling:
		err = collective.RecursiveDoublingAllreduce(ctx, o.sub, buf, op)
	case algoHalvingDoubling:
		err = collective.RecursiveHalvingDoublingAllreduce(ctx, o.sub, buf, op)
	case algoRing:
		err = collective.RingAllreduce(ctx, o.sub, o.currentModel(), buf, op)
	default:
		// Binomial reduce+broadcast: spec.md §7 kind 3's non-commutative
		// fallback. BinomialReduce leaves the folded result on rank 0
		// only; BinomialBroadcast from rank 0 then fans it back out.
		if err = collective.BinomialReduce(ctx, o.sub, buf, 0, op); err == nil {
			err = collective.BinomialBroadcast(ctx, o.sub, buf, 0)
		}
	}
	elapsed := o.sub.Wtime() - start
	if err != nil {
		return fmt.Errorf("OptimizeAllreduce: %w", err)
	}
	copy(recvbuf[:count], buf)
	o.emit("allreduce", -1, int64(bytes), n, dec.algorithm, elapsed)
	return nil
}

// OptimizeAllgather implements spec.md §6's optimize_allgather: every
// rank contributes a count-sized chunk; on return every rank's recvbuf
// holds the N*count-element concatenation sendbuf[0] ‖ sendbuf[1] ‖ ... ‖
// sendbuf[N-1] in rank order.
func (o *Optimizer) OptimizeAllgather(ctx context.Context, sendbuf, recvbuf []float64, count int) error {
	n := o.sub.Size()
	if err := validateCount(count, len(sendbuf)); err != nil {
		return fmt.Errorf("OptimizeAllgather: %w", err)
	}
	if count > 0 && count > maxCount/n {
		return fmt.Errorf("OptimizeAllgather: %w", ErrCountOverflow)
	}
	if err := validateCount(count*n, len(recvbuf)); err != nil {
		return fmt.Errorf("OptimizeAllgather: %w", err)
	}
	if n <= 1 || count == 0 {
		if count > 0 {
			copy(recvbuf[:count], sendbuf[:count])
		}
		return nil
	}

	self := o.sub.Rank()
	buf := make([]float64, count*n)
	copy(buf[self*count:(self+1)*count], sendbuf[:count])
	bytes := count * datatypeSize

	dec := o.lookupOrDecide(opAllgather, n, bytes, 0)

	start := o.sub.Wtime()
	var err error
	switch dec.algorithm {
	case algoRecursiveDoubling:
		err = collective.RecursiveDoublingAllgather(ctx, o.sub, buf)
	default:
		err = collective.RingAllgather(ctx, o.sub, o.currentModel(), buf)
	}
	elapsed := o.sub.Wtime() - start
	if err != nil {
		return fmt.Errorf("OptimizeAllgather: %w", err)
	}
	copy(recvbuf[:count*n], buf)
	o.emit("allgather", -1, int64(bytes), n, dec.algorithm, elapsed)
	return nil
}
