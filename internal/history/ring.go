// Package history keeps the rolling 24-hour temperature trend per sensor:
// a fixed-capacity ring of 15-minute bucketed points.
package history

import "time"

// BucketWidth is the fixed history resolution.
const BucketWidth = 15 * time.Minute

// Capacity is 24 hours at BucketWidth resolution.
const Capacity = 96

// Point is a single history sample.
type Point struct {
	Bucket time.Time // start of the 15-minute bucket
	TempC  float64
}

// BucketFor returns the bucket a timestamp falls into.
func BucketFor(t time.Time) time.Time {
	return t.Truncate(BucketWidth)
}

// Ring is a fixed-capacity FIFO of bucketed points. Pushing a point in the
// same bucket as the newest entry overwrites it instead of appending, so the
// caller can push every acquisition tick and the ring still advances exactly
// once per bucket. Buckets are strictly increasing while populated.
// Not safe for concurrent use — caller must synchronize.
type Ring struct {
	buf   [Capacity]Point
	head  int // next write position
	count int
}

// New creates an empty Ring.
func New() *Ring {
	return &Ring{}
}

// Push records a point. Same-bucket pushes overwrite the newest entry;
// points older than the newest bucket are ignored; otherwise the point is
// appended, evicting the oldest when full.
func (r *Ring) Push(p Point) {
	if r.count > 0 {
		last := r.buf[(r.head-1+Capacity)%Capacity]
		if p.Bucket.Equal(last.Bucket) {
			r.buf[(r.head-1+Capacity)%Capacity] = p
			return
		}
		if p.Bucket.Before(last.Bucket) {
			return
		}
	}

	r.buf[r.head] = p
	r.head = (r.head + 1) % Capacity
	if r.count < Capacity {
		r.count++
	}
}

// Snapshot returns a copy of the contents, oldest first.
func (r *Ring) Snapshot() []Point {
	if r.count == 0 {
		return nil
	}

	result := make([]Point, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + Capacity) % Capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%Capacity]
	}
	return result
}

// Len returns the number of stored points.
func (r *Ring) Len() int {
	return r.count
}

// Last returns the newest point and whether the ring is non-empty.
func (r *Ring) Last() (Point, bool) {
	if r.count == 0 {
		return Point{}, false
	}
	return r.buf[(r.head-1+Capacity)%Capacity], true
}
