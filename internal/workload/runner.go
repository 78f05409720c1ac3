package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"github.com/plus3/gidstore/chunky"
	"github.com/plus3/gidstore/slotmap"
	"go.uber.org/zap"
)

// ErrModelMismatch is wrapped by every error that reports the slot map
// disagreeing with the reference model.
var ErrModelMismatch = errors.New("workload: slot map disagrees with model")

// ctxCheckEvery is how many operations run between context checks.
const ctxCheckEvery = 1024

// staleValue is written through removed handles. No insert ever stores it.
const staleValue = ^uint64(0)

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrModelMismatch, fmt.Sprintf(format, args...))
}

// Counters tallies the operations a run performed.
type Counters struct {
	Inserts       int `json:"inserts"`
	Removes       int `json:"removes"`
	Gets          int `json:"gets"`
	StaleChecks   int `json:"stale_checks"`
	Verifications int `json:"verifications"`
	PeakLive      int `json:"peak_live"`
}

// Runner applies a randomized mix of operations to a SlotMap and mirrors
// each one in a reference model. live keeps the model's handles ordered so a
// victim can be picked without scanning. Removed handles go to a bounded
// graveyard and must never resolve again.
type Runner struct {
	cfg *Config
	log *zap.Logger
	rng *rand.Rand

	slots *slotmap.SlotMap[uint64]
	model *intmap.Map[slotmap.GID, uint64]
	live  *btree.BTreeG[slotmap.GID]

	graves  []slotmap.GID
	graveAt int
	buried  *intmap.Set[slotmap.GID]

	next     uint64
	counters Counters
}

func byIndex(a, b slotmap.GID) bool {
	if a.Index() != b.Index() {
		return a.Index() < b.Index()
	}
	return a.Generation() < b.Generation()
}

// NewRunner validates cfg and prepares an empty slot map.
func NewRunner(cfg *Config, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var opts []slotmap.Option
	if cfg.ChunkSize > 0 {
		opts = append(opts, slotmap.WithChunkSize(chunky.Elements(cfg.ChunkSize)))
	}

	return &Runner{
		cfg:    cfg,
		log:    log,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		slots:  slotmap.New[uint64](opts...),
		model:  intmap.New[slotmap.GID, uint64](max(cfg.InitialLive, 64)),
		live:   btree.NewG(32, byIndex),
		buried: intmap.NewSet[slotmap.GID](max(cfg.GraveyardSize, 1)),
	}, nil
}

// Run performs the configured number of operations and returns the result.
// It stops early with the context's error if ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	r.log.Info("workload started",
		zap.Uint64("seed", r.cfg.Seed),
		zap.Int("operations", r.cfg.Operations),
		zap.Int("initial_live", r.cfg.InitialLive),
	)

	r.slots.Reserve(r.cfg.InitialLive)
	for i := 0; i < r.cfg.InitialLive; i++ {
		if err := r.insert(); err != nil {
			return nil, err
		}
	}

	for i := 0; i < r.cfg.Operations; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("workload interrupted after %d operations: %w", i, err)
			}
		}
		if err := r.step(); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		if r.cfg.VerifyEvery > 0 && (i+1)%r.cfg.VerifyEvery == 0 {
			if err := r.verify(); err != nil {
				return nil, fmt.Errorf("verify after operation %d: %w", i, err)
			}
		}
	}
	if err := r.verify(); err != nil {
		return nil, fmt.Errorf("final verify: %w", err)
	}

	elapsed := time.Since(start)
	res := &Result{
		RunID:         uuid.New(),
		Seed:          r.cfg.Seed,
		Operations:    r.cfg.Operations,
		Counters:      r.counters,
		FinalLive:     r.slots.Len(),
		Capacity:      r.slots.Capacity(),
		FreeSlots:     r.slots.FreeLen(),
		ElapsedMillis: float64(elapsed.Microseconds()) / 1000,
	}
	if s := elapsed.Seconds(); s > 0 {
		res.OpsPerSecond = float64(r.cfg.Operations) / s
	}

	r.log.Info("workload finished",
		zap.Stringer("run_id", res.RunID),
		zap.Int("live", res.FinalLive),
		zap.Int("peak_live", r.counters.PeakLive),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (r *Runner) step() error {
	mix := r.cfg.Mix
	n := r.rng.IntN(mix.total())

	switch {
	case n < mix.Insert:
		return r.insert()
	case n < mix.Insert+mix.Remove:
		if r.live.Len() == 0 {
			return r.insert()
		}
		return r.remove()
	case n < mix.Insert+mix.Remove+mix.Get:
		if r.live.Len() == 0 {
			return r.insert()
		}
		return r.get()
	default:
		if len(r.graves) == 0 {
			return r.insert()
		}
		return r.stale()
	}
}

func (r *Runner) insert() error {
	v := r.next
	r.next++

	h := r.slots.Insert(v)
	if !h.IsValid() {
		return mismatch("insert returned invalid handle")
	}
	if r.model.Has(h) {
		return mismatch("insert returned live handle %s", h)
	}
	if r.buried.Has(h) {
		return mismatch("insert reissued removed handle %s", h)
	}

	r.model.Put(h, v)
	r.live.ReplaceOrInsert(h)
	r.counters.Inserts++
	r.counters.PeakLive = max(r.counters.PeakLive, r.model.Len())
	return nil
}

func (r *Runner) remove() error {
	h := r.pick()
	want, _ := r.model.Get(h)

	got, ok := r.slots.Remove(h)
	if !ok || got != want {
		return mismatch("remove %s: got (%d, %v), want (%d, true)", h, got, ok, want)
	}
	if _, again := r.slots.Remove(h); again {
		return mismatch("second remove of %s succeeded", h)
	}

	r.model.Del(h)
	r.live.Delete(h)
	r.bury(h)
	r.counters.Removes++
	return nil
}

func (r *Runner) get() error {
	h := r.pick()
	want, _ := r.model.Get(h)

	p := r.slots.Get(h)
	if p == nil {
		return mismatch("get %s: missing, want %d", h, want)
	}
	if *p != want {
		return mismatch("get %s: got %d, want %d", h, *p, want)
	}
	r.counters.Gets++
	return nil
}

func (r *Runner) stale() error {
	h := r.graves[r.rng.IntN(len(r.graves))]
	if r.slots.ContainsKey(h) || r.slots.Get(h) != nil {
		return mismatch("removed handle %s still resolves", h)
	}
	if _, ok := r.slots.Replace(h, staleValue); ok {
		return mismatch("replace through removed handle %s succeeded", h)
	}
	if r.slots.Get(h) != nil {
		return mismatch("replace revived removed handle %s", h)
	}
	if occ, ok := r.occupant(h.Index()); ok {
		want, _ := r.model.Get(occ)
		if p := r.slots.Get(occ); p == nil || *p != want {
			return mismatch("replace through %s clobbered live handle %s", h, occ)
		}
	}
	r.counters.StaleChecks++
	return nil
}

// occupant returns the live handle holding slot idx, if any.
func (r *Runner) occupant(idx uint32) (slotmap.GID, bool) {
	var found slotmap.GID
	r.live.AscendGreaterOrEqual(slotmap.NewGID(idx, 0), func(h slotmap.GID) bool {
		if h.Index() == idx {
			found = h
		}
		return false
	})
	return found, found.IsValid()
}

// pick returns a live handle at or after a random slot index.
func (r *Runner) pick() slotmap.GID {
	hi, _ := r.live.Max()
	pivot := slotmap.NewGID(uint32(r.rng.Uint64N(uint64(hi.Index())+1)), 0)

	picked := hi
	r.live.AscendGreaterOrEqual(pivot, func(h slotmap.GID) bool {
		picked = h
		return false
	})
	return picked
}

func (r *Runner) bury(h slotmap.GID) {
	size := r.cfg.GraveyardSize
	if size == 0 {
		return
	}
	if len(r.graves) < size {
		r.graves = append(r.graves, h)
	} else {
		r.buried.Del(r.graves[r.graveAt])
		r.graves[r.graveAt] = h
		r.graveAt = (r.graveAt + 1) % size
	}
	r.buried.Add(h)
}

// verify sweeps the whole slot map against the model.
func (r *Runner) verify() error {
	if r.slots.Len() != r.model.Len() || r.live.Len() != r.model.Len() {
		return mismatch("len: slots=%d model=%d live=%d", r.slots.Len(), r.model.Len(), r.live.Len())
	}
	for h, v := range r.slots.All() {
		want, ok := r.model.Get(h)
		if !ok {
			return mismatch("slot map holds unknown handle %s", h)
		}
		if *v != want {
			return mismatch("value for %s: got %d, want %d", h, *v, want)
		}
	}
	for h := range r.buried.All() {
		if r.slots.ContainsKey(h) {
			return mismatch("removed handle %s still resolves", h)
		}
	}

	r.counters.Verifications++
	r.log.Debug("model verified",
		zap.Int("live", r.model.Len()),
		zap.Int("capacity", r.slots.Capacity()),
		zap.Int("free", r.slots.FreeLen()),
	)
	return nil
}
