package slotmap

// queue is a FIFO ring buffer of handles. Recycled slots are handed out
// oldest first so a freed index rests as long as possible before reuse.
type queue struct {
	buf  []GID
	head int
	size int
}

func (q *queue) len() int { return q.size }

func (q *queue) push(g GID) {
	if q.size == len(q.buf) {
		q.grow(q.size + 1)
	}
	q.buf[(q.head+q.size)%len(q.buf)] = g
	q.size++
}

func (q *queue) pop() (GID, bool) {
	if q.size == 0 {
		return InvalidGID, false
	}
	g := q.buf[q.head]
	q.buf[q.head] = InvalidGID
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return g, true
}

// grow reallocates the ring so it holds at least n handles, unwrapping the
// contents to start at offset 0.
func (q *queue) grow(n int) {
	if n <= len(q.buf) {
		return
	}
	buf := make([]GID, max(n, 2*len(q.buf)))
	q.copyTo(buf)
	q.buf = buf
	q.head = 0
}

func (q *queue) copyTo(buf []GID) {
	if q.size == 0 {
		return
	}
	if end := q.head + q.size; end <= len(q.buf) {
		copy(buf, q.buf[q.head:end])
		return
	}
	n := copy(buf, q.buf[q.head:])
	copy(buf[n:], q.buf[:q.size-n])
}

// shrink trims the ring to exactly the queued handles.
func (q *queue) shrink() {
	if q.size == len(q.buf) {
		return
	}
	var buf []GID
	if q.size > 0 {
		buf = make([]GID, q.size)
		q.copyTo(buf)
	}
	q.buf = buf
	q.head = 0
}

func (q *queue) clear() {
	clear(q.buf)
	q.head = 0
	q.size = 0
}
