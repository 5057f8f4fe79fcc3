package common

// CircularBuffer keeps the most recent samples of a stream.
// Writes never block: once full, the oldest samples are overwritten.
// Not safe for concurrent use; capture.LiveBuffer adds locking.
type CircularBuffer struct {
	buffer   []float64
	size     int
	writePos int
	count    int
	total    int64
}

// NewCircularBuffer creates a new circular buffer
func NewCircularBuffer(size int) *CircularBuffer {
	if size < 1 {
		size = 1
	}
	return &CircularBuffer{
		buffer: make([]float64, size),
		size:   size,
	}
}

// Write adds data to the buffer, overwriting the oldest samples when full
func (cb *CircularBuffer) Write(data []float64) int {
	// Only the tail can survive a write larger than the buffer
	if len(data) > cb.size {
		cb.total += int64(len(data) - cb.size)
		data = data[len(data)-cb.size:]
	}

	for _, sample := range data {
		cb.buffer[cb.writePos] = sample
		cb.writePos = (cb.writePos + 1) % cb.size
		if cb.count < cb.size {
			cb.count++
		}
		cb.total++
	}
	return len(data)
}

// Latest copies the most recent len(dst) samples into dst, oldest first.
// When fewer samples are available they are right-aligned and the
// leading part of dst is zeroed. Returns the number of real samples copied.
func (cb *CircularBuffer) Latest(dst []float64) int {
	n := min(len(dst), cb.count)
	pad := len(dst) - n
	for i := 0; i < pad; i++ {
		dst[i] = 0
	}

	start := (cb.writePos - n + cb.size) % cb.size
	for i := 0; i < n; i++ {
		dst[pad+i] = cb.buffer[(start+i)%cb.size]
	}
	return n
}

// Total returns the number of samples ever written
func (cb *CircularBuffer) Total() int64 {
	return cb.total
}
