package buffer

// Ring is a ring buffer keeping the last x values
type Ring struct {
	index  int
	count  int
	values []float64
}

// NewRing creates a new ring with the given buffer size.
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{
		values: make([]float64, size),
	}
}

// Size returns the number of elements within the ring.
func (r *Ring) Size() int {
	if r.count < len(r.values) {
		return r.count
	}
	return len(r.values)
}

// Full returns true if the ring has been filled up at least once.
func (r *Ring) Full() bool {
	return r.count >= len(r.values)
}

// Push adds an element to the ring.
func (r *Ring) Push(v float64) {
	r.values[r.index] = v
	r.index = r.next(r.index)
	r.count++
}

func (r *Ring) next(index int) int {
	return (index + 1) % len(r.values)
}

// Get returns an ordered slice of the ring elements, oldest first.
func (r *Ring) Get() []float64 {
	l := r.Size()
	v := make([]float64, l)
	start := 0
	if r.Full() {
		start = r.index
	}
	for i := 0; i < l; i++ {
		v[i] = r.values[(start+i)%len(r.values)]
	}
	return v
}

// Spread returns the distance between the largest and smallest element of the ring.
// NOTE : any NaN in the ring makes the spread NaN as well.
func (r *Ring) Spread() float64 {
	vv := r.Get()
	if len(vv) == 0 {
		return 0
	}
	min, max := vv[0], vv[0]
	for _, v := range vv[1:] {
		if v != v {
			return v
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}
