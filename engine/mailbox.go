package engine

import "sync"

// mailbox is an unbounded FIFO of requests. Senders never block.
type mailbox struct {
	mu     sync.Mutex
	items  []*Request
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		notify: make(chan struct{}, 1),
	}
}

func (m *mailbox) push(reqs ...*Request) {
	if len(reqs) == 0 {
		return
	}
	m.mu.Lock()
	m.items = append(m.items, reqs...)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (*Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return nil, false
	}
	req := m.items[0]
	m.items[0] = nil
	m.items = m.items[1:]
	return req, true
}
