package metrics

// Bucket counts the step values in [Lo, Hi).
type Bucket struct {
	Lo    int
	Hi    int
	Count int
}

// Histogram bins step counts into n equal buckets over [0, maxSteps]. The
// last bucket is closed so that rays which hit maxSteps are counted.
func Histogram(steps []int, maxSteps, n int) []Bucket {
	if n < 1 {
		n = 1
	}
	if maxSteps < n {
		n = max(1, maxSteps)
	}
	width := (maxSteps + n) / n
	if width < 1 {
		width = 1
	}

	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].Lo = i * width
		buckets[i].Hi = (i + 1) * width
	}
	buckets[n-1].Hi = max(buckets[n-1].Hi, maxSteps+1)

	for _, s := range steps {
		i := s / width
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		buckets[i].Count++
	}
	return buckets
}

// Counts returns the bucket counts as floats, ready for plotting.
func Counts(buckets []Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b.Count)
	}
	return out
}
