package jpetgen

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jpet-mc/jpetgen/decay"
	"github.com/jpet-mc/jpetgen/event"
	"github.com/jpet-mc/jpetgen/rand"
)

// Summary counts the events generated by a run.
type Summary struct {
	// Events is the number of populated events and Accepted the number which
	// passed Manager.Accept.
	Events, Accepted int
	Channels         map[event.DecayChannel]int
	Decay            decay.Stats
}

func newSummary() Summary {
	return Summary{Channels: map[event.DecayChannel]int{}}
}

// Add merges o into s.
func (s *Summary) Add(o Summary) {
	if s.Channels == nil {
		s.Channels = map[event.DecayChannel]int{}
	}
	s.Events += o.Events
	s.Accepted += o.Accepted
	for ch, n := range o.Channels {
		s.Channels[ch] += n
	}
	s.Decay = s.Decay.Add(o.Decay)
}

// Manager generates batches of events over several workers. Each worker owns a
// clone of Proto seeded with rand.WorkerSeed(Seed, worker), so a run is
// reproducible for a fixed seed and worker count.
type Manager struct {
	Proto   *Generator
	Workers int
	Seed    uint64
	RNG     rand.GeneratorType

	// Accept decides whether a populated event is kept. A nil Accept keeps
	// every event.
	Accept func(ev *event.Event) bool
	// OnEvent is called with every accepted event. It is called concurrently
	// by different workers and must not retain ev, which is reused.
	OnEvent func(worker int, ev *event.Event)

	Log zerolog.Logger
}

// NewManager creates a Manager with one worker per CPU.
func NewManager(proto *Generator, seed uint64) *Manager {
	return &Manager{
		Proto:   proto,
		Workers: runtime.NumCPU(),
		Seed:    seed,
		RNG:     rand.PCG,
		Log:     zerolog.Nop(),
	}
}

// Run generates n events. It stops at the first error or when ctx is
// cancelled, returning the counts of everything generated so far.
func (man *Manager) Run(ctx context.Context, n int) (Summary, error) {
	workers := man.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers == 0 {
		return newSummary(), nil
	}

	sums := make([]Summary, workers)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	first := 0
	for w := 0; w < workers; w++ {
		count := n / workers
		if w < n%workers {
			count++
		}

		src := rand.NewGenerator(rand.WorkerSeed(man.Seed, w), man.RNG)
		gen := man.Proto.Clone(src)
		gen.SetLogger(man.Log.With().Int("worker", w).Logger())
		sums[w] = newSummary()

		start := first
		g.Go(func() error {
			return man.work(ctx, w, gen, start, count, &sums[w])
		})
		first += count
	}

	err := g.Wait()

	total := newSummary()
	for _, s := range sums {
		total.Add(s)
	}
	man.Log.Debug().Int("workers", workers).Int("events", total.Events).
		Int("accepted", total.Accepted).Msg("Run finished.")
	return total, err
}

func (man *Manager) work(
	ctx context.Context, w int, gen *Generator, first, count int, sum *Summary,
) error {
	defer func() { sum.Decay = gen.Context().Decay.Stats() }()

	ev := event.New(first)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev.Reset(first + i)
		ch, err := gen.Populate(ev)
		if err != nil {
			return fmt.Errorf("event %d: %w", first+i, err)
		}
		sum.Events++
		sum.Channels[ch]++

		if man.Accept != nil && !man.Accept(ev) {
			continue
		}
		sum.Accepted++
		if man.OnEvent != nil {
			man.OnEvent(w, ev)
		}
	}
	return nil
}
