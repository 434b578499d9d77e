package gemini

import "sync"

// DefaultPoolSize bounds concurrent dispatch when no explicit size is
// configured.
const DefaultPoolSize = 4

// Pool bounds the number of API requests in flight at once. Submission
// never blocks the caller: jobs beyond the bound queue behind a
// semaphore and start as slots free up.
//
// A Pool may be shared between clients. Whoever created it is
// responsible for closing it.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool returns a pool allowing up to size concurrent jobs. Sizes
// below 1 fall back to DefaultPoolSize.
func NewPool(size int) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return cap(p.sem) }

// Submit schedules job for execution and returns without waiting for a
// free slot. It reports false, without running the job, when the pool
// is closed.
func (p *Pool) Submit(job func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		job()
	}()
	return true
}

// Close stops accepting new jobs and waits for every accepted job to
// finish. It is safe to call multiple times and from multiple
// goroutines; every call observes the drained state before returning.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
