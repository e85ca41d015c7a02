// Package generator picks the next passage to review from a plan.
package generator

import (
	"math/rand"
	"time"
)

// Picker selects passages, never repeating the previous pick while an
// alternative exists.
type Picker struct {
	rnd  *rand.Rand
	last string
}

// New returns a Picker seeded with the current time.
func New() *Picker {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Picker.
func NewWithSeed(seed int64) *Picker {
	return &Picker{rnd: rand.New(rand.NewSource(seed))}
}

// Next selects a reference uniformly. It returns "" for an empty list.
func (p *Picker) Next(refs []string) string {
	return p.NextWeighted(refs, nil, 0)
}

// NextWeighted selects a reference with a bias toward weak passages: each
// reference weighs 1 + weakness*factor, where weakness comes from weak.
func (p *Picker) NextWeighted(refs []string, weak map[string]float64, factor float64) string {
	candidates := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == p.last && len(refs) > 1 {
			continue
		}
		candidates = append(candidates, ref)
	}
	if len(candidates) == 0 {
		return ""
	}

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, ref := range candidates {
		w := 1.0 + weak[ref]*factor
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}

	idx := len(candidates) - 1
	r := p.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			idx = i
			break
		}
	}
	p.last = candidates[idx]
	return p.last
}
