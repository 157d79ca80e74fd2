/*package rand supplies the random variates used by the event generators.

Every simulation worker owns exactly one Generator. Generators are not safe for
concurrent use and are never shared: determinism of a worker's event stream only
depends on the seed it was created with.
*/
package rand

import (
	"errors"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrRejectionLimit is returned (wrapped) by every rejection sampling loop which
// gives up after its attempt budget is spent.
var ErrRejectionLimit = errors.New("rejection sampling limit reached")

// DefaultMaxAttempts is the attempt budget of rejection loops when none is
// configured. It is high enough that no sane configuration ever reaches it.
const DefaultMaxAttempts = 1000000

// Source is what samplers need from a random number generator.
type Source interface {
	// Uniform returns a variate uniform in [low, high).
	Uniform(low, high float64) float64
	// Exponential returns an exponential variate with the given mean. A
	// non-positive mean gives 0.
	Exponential(mean float64) float64
}

// GeneratorType selects the underlying bit generator.
type GeneratorType int

const (
	PCG GeneratorType = iota
	ChaCha8
)

// Generator is a seeded Source.
type Generator struct {
	rng  *rand.Rand
	seed uint64
}

// NewGenerator creates a Generator of the given type from a seed.
func NewGenerator(seed uint64, gt GeneratorType) *Generator {
	var src rand.Source
	switch gt {
	case ChaCha8:
		var key [32]byte
		for i := 0; i < 8; i++ {
			key[i] = byte(seed >> (8 * uint(i)))
		}
		src = rand.NewChaCha8(key)
	default:
		src = rand.NewPCG(seed, 0x9e3779b97f4a7c15)
	}
	return &Generator{rng: rand.New(src), seed: seed}
}

// NewTimeSeed creates a Generator seeded from the wall clock.
func NewTimeSeed(gt GeneratorType) *Generator {
	return NewGenerator(uint64(time.Now().UnixNano()), gt)
}

// Seed returns the seed the generator was created with.
func (gen *Generator) Seed() uint64 { return gen.seed }

// Float64 returns a variate uniform in [0, 1).
func (gen *Generator) Float64() float64 { return gen.rng.Float64() }

// Uniform returns a variate uniform in [low, high).
func (gen *Generator) Uniform(low, high float64) float64 {
	return low + (high-low)*gen.rng.Float64()
}

// UniformAt fills buf with variates uniform in [low, high).
func (gen *Generator) UniformAt(low, high float64, buf []float64) {
	for i := range buf {
		buf[i] = gen.Uniform(low, high)
	}
}

// Exponential returns an exponential variate with the given mean.
func (gen *Generator) Exponential(mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	return distuv.Exponential{Rate: 1 / mean}.Quantile(gen.rng.Float64())
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (gen *Generator) IntN(n int) int { return gen.rng.IntN(n) }

// Index returns a uniform index into a slice of length n using a single
// uniform draw from src. It panics if n <= 0.
func Index(src Source, n int) int {
	if n <= 0 {
		panic("Index called with non-positive length.")
	}
	i := int(src.Uniform(0, float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// WorkerSeed derives the seed of a worker from a run seed so that each worker
// gets an independent stream.
func WorkerSeed(runSeed uint64, worker int) uint64 {
	// splitmix64 step
	z := runSeed + uint64(worker+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
