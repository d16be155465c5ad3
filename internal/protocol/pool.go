package protocol

import "sync"

// DefaultPoolCapacity bounds the free list. The figure paces allocation, it
// is not load-bearing for correctness.
const DefaultPoolCapacity = 2048

// OutputPool is a bounded LIFO free list of output messages. Get falls back
// to allocation when empty; Put drops the buffer when full.
type OutputPool struct {
	mu   sync.Mutex
	free []*OutputMessage
	cap  int
}

// NewOutputPool creates a pool bounded to capacity buffers.
func NewOutputPool(capacity int) *OutputPool {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &OutputPool{
		free: make([]*OutputMessage, 0, capacity),
		cap:  capacity,
	}
}

// Get returns a reset message from the free list, allocating when empty.
func (p *OutputPool) Get() *OutputMessage {
	p.mu.Lock()
	n := len(p.free)
	var m *OutputMessage
	if n > 0 {
		m = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if m == nil {
		m = &OutputMessage{}
	}
	m.Reset()
	return m
}

// Put returns a message to the free list. When the list is full the message
// is simply dropped for the collector.
func (p *OutputPool) Put(m *OutputMessage) {
	if m == nil {
		return
	}
	m.Next = nil

	p.mu.Lock()
	if len(p.free) < p.cap {
		p.free = append(p.free, m)
	}
	p.mu.Unlock()
}

// Len reports the current free list size.
func (p *OutputPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
