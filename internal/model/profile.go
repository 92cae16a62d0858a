package model

import (
	"math"
	"sort"
)

// Profile maps an hour offset after the decision point (1 = first hour after)
// to the average hourly energy reduction expected at that offset.
type Profile map[int]float64

// ShiftProfile converts a raw potential table into a Profile.
//
// The raw tables record the potential "at hour x" for the interval ending at x,
// i.e. the hour that starts at x-1 after the event. Offset 1 in a Profile is the
// first hour after the decision point, so every raw key moves up by one.
// Do not drop this shift: phase boundaries (18 / 36) are defined on shifted keys.
func ShiftProfile(raw map[int]float64) Profile {
	p := make(Profile, len(raw))
	for k, v := range raw {
		p[k+1] = v
	}
	return p
}

// Missing returns the offsets in [1, horizon] that have no finite value, ascending.
func (p Profile) Missing(horizon int) []int {
	var out []int
	for h := 1; h <= horizon; h++ {
		v, ok := p[h]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			out = append(out, h)
		}
	}
	return out
}

// Sum adds the potentials for offsets from..to (inclusive).
func (p Profile) Sum(from, to int) float64 {
	s := 0.0
	for h := from; h <= to; h++ {
		s += p[h]
	}
	return s
}

// Offsets returns the profile keys in ascending order.
func (p Profile) Offsets() []int {
	keys := make([]int, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ProfileSet holds one Profile per temperature bucket.
type ProfileSet map[Bucket]Profile

// Validate checks that every bucket has a profile covering offsets 1..horizon.
// The first incomplete bucket (in temperature order) is reported.
func (s ProfileSet) Validate(horizon int) error {
	for _, b := range Buckets {
		p, ok := s[b]
		if !ok {
			return &IncompleteProfileError{Bucket: b}
		}
		if missing := p.Missing(horizon); len(missing) > 0 {
			return &IncompleteProfileError{Bucket: b, Missing: missing}
		}
	}
	return nil
}
