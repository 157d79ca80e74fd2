package nema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jpet-mc/jpetgen/rand"
)

var (
	ErrUnknownPoint    = errors.New("point does not exist")
	ErrInvalidPointID  = errors.New("point IDs must be positive")
	ErrNegativeWeight  = errors.New("point weights must be non-negative")
	ErrNoEnabledPoints = errors.New("no point has a positive weight")
)

// PointError reports a registry operation which failed for one point.
type PointError struct {
	ID  int
	Err error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("NEMA point %d: %v", e.ID, e.Err)
}

func (e *PointError) Unwrap() error { return e.Err }

// Registry stores the configured points and their selection weights.
//
// Selection uses a flattened list in which every ID appears as many times as
// its weight, so weights act as repeat counts: large weights grow the list
// linearly. The list is rebuilt lazily after weights change.
type Registry struct {
	points  []Point
	weights []int
	index   map[int]int

	flat  []int
	dirty bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[int]int{}}
}

func (r *Registry) getOrCreate(id int) (int, error) {
	if id < 1 {
		return 0, &PointError{id, ErrInvalidPointID}
	}
	if i, ok := r.index[id]; ok {
		return i, nil
	}
	r.index[id] = len(r.points)
	r.points = append(r.points, NewPoint(id))
	r.weights = append(r.weights, 0)
	return len(r.points) - 1, nil
}

// Add inserts a point with default settings and zero weight. Existing points
// are left untouched.
func (r *Registry) Add(id int) error {
	_, err := r.getOrCreate(id)
	return err
}

// Exists returns true if a point with the given ID has been created.
func (r *Registry) Exists(id int) bool {
	_, ok := r.index[id]
	return ok
}

// Len returns the number of stored points.
func (r *Registry) Len() int { return len(r.points) }

// IDs returns the IDs of all stored points in increasing order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.index))
	for id := range r.index {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetWeight sets the selection weight of a point, creating the point if
// needed. A zero weight excludes the point from selection.
func (r *Registry) SetWeight(id, weight int) error {
	if weight < 0 {
		return &PointError{id, ErrNegativeWeight}
	}
	i, err := r.getOrCreate(id)
	if err != nil {
		return err
	}
	r.weights[i] = weight
	r.dirty = true
	return nil
}

// Weight returns the selection weight of a point, or 0 if it does not exist.
func (r *Registry) Weight(id int) int {
	i, ok := r.index[id]
	if !ok {
		return 0
	}
	return r.weights[i]
}

// SetOnePointOnly makes id the only selectable point, with weight 1.
func (r *Registry) SetOnePointOnly(id int) error {
	if _, err := r.getOrCreate(id); err != nil {
		return err
	}
	for i := range r.weights {
		r.weights[i] = 0
	}
	return r.SetWeight(id, 1)
}

// Update applies fn to an existing point.
func (r *Registry) Update(id int, fn func(p *Point)) error {
	i, ok := r.index[id]
	if !ok {
		return &PointError{id, ErrUnknownPoint}
	}
	fn(&r.points[i])
	r.points[i].ID = id
	return nil
}

// Configure applies fn to a point, creating the point first if needed.
func (r *Registry) Configure(id int, fn func(p *Point)) error {
	i, err := r.getOrCreate(id)
	if err != nil {
		return err
	}
	fn(&r.points[i])
	r.points[i].ID = id
	return nil
}

// Point returns a copy of a stored point.
func (r *Registry) Point(id int) (Point, error) {
	i, ok := r.index[id]
	if !ok {
		return Point{}, &PointError{id, ErrUnknownPoint}
	}
	return r.points[i], nil
}

// Clear removes every point.
func (r *Registry) Clear() {
	r.points = r.points[:0]
	r.weights = r.weights[:0]
	r.index = map[int]int{}
	r.flat = r.flat[:0]
	r.dirty = false
}

func (r *Registry) flatten() {
	r.flat = r.flat[:0]
	for i, w := range r.weights {
		for j := 0; j < w; j++ {
			r.flat = append(r.flat, r.points[i].ID)
		}
	}
	r.dirty = false
}

// RandomPoint picks a point with probability proportional to its weight and
// returns a copy of it.
func (r *Registry) RandomPoint(src rand.Source) (Point, error) {
	if r.dirty {
		r.flatten()
	}
	if len(r.flat) == 0 {
		return Point{}, ErrNoEnabledPoints
	}
	id := r.flat[rand.Index(src, len(r.flat))]
	return r.points[r.index[id]], nil
}

// Clone returns a deep copy of the registry, so that each worker can own one.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		points:  append([]Point{}, r.points...),
		weights: append([]int{}, r.weights...),
		index:   make(map[int]int, len(r.index)),
		dirty:   true,
	}
	for id, i := range r.index {
		c.index[id] = i
	}
	return c
}
