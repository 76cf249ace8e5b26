package logging

const defaultProgressBucket = 5

// ProgressSampler lets a progress value through only when it enters a new
// bucket of bucketSize percent. Unknown (negative) progress never passes.
type ProgressSampler struct {
	bucketSize int
	last       int
}

func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = defaultProgressBucket
	}
	return &ProgressSampler{bucketSize: bucketSize, last: -1}
}

// ShouldLog reports whether percent should be logged. A nil sampler logs
// everything.
func (s *ProgressSampler) ShouldLog(percent int) bool {
	switch {
	case s == nil:
		return true
	case percent < 0:
		return false
	}
	bucket := min(percent, 100) / s.bucketSize
	if bucket <= s.last {
		return false
	}
	s.last = bucket
	return true
}

// Reset forgets the last bucket, for reuse across conversions.
func (s *ProgressSampler) Reset() {
	if s != nil {
		s.last = -1
	}
}
