package model

import "math"

// Bucket is a temperature class of the flexibility potential.
// Keep these values stable; they are written to the output CSV.
type Bucket string

const (
	BucketBelow3 Bucket = "bel3"
	Bucket3To6   Bucket = "b36"
	Bucket6To9   Bucket = "b69"
	BucketAbove9 Bucket = "ab9"
)

// Buckets lists all buckets in ascending temperature order.
var Buckets = []Bucket{BucketBelow3, Bucket3To6, Bucket6To9, BucketAbove9}

// Bounds returns the half-open interval [lo, hi) in °C covered by the bucket.
// The outer buckets are unbounded (-Inf / +Inf).
func (b Bucket) Bounds() (lo, hi float64) {
	switch b {
	case BucketBelow3:
		return math.Inf(-1), 3
	case Bucket3To6:
		return 3, 6
	case Bucket6To9:
		return 6, 9
	case BucketAbove9:
		return 9, math.Inf(1)
	default:
		return math.NaN(), math.NaN()
	}
}

// Contains reports whether the temperature t (°C) falls in the bucket.
// Boundaries belong to the upper bucket: 3.0 is b36, 6.0 is b69, 9.0 is ab9.
func (b Bucket) Contains(t float64) bool {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return false
	}
	lo, hi := b.Bounds()
	return t >= lo && t < hi
}

func (b Bucket) Valid() bool {
	switch b {
	case BucketBelow3, Bucket3To6, Bucket6To9, BucketAbove9:
		return true
	}
	return false
}

// Classify returns the bucket for the temperature t.
// ok is false only when t is NaN or infinite.
func Classify(t float64) (Bucket, bool) {
	switch {
	case math.IsNaN(t) || math.IsInf(t, 0):
		return "", false
	case t < 3:
		return BucketBelow3, true
	case t < 6:
		return Bucket3To6, true
	case t < 9:
		return Bucket6To9, true
	default:
		return BucketAbove9, true
	}
}
