package manager

import "sync"

type refreshCall struct {
	done  chan struct{}
	token string
	ok    bool
}

// refreshGroup collapses concurrent refreshes for the same key into a single
// provider call. Late arrivals block on the in-flight call and share its
// result instead of issuing their own.
type refreshGroup struct {
	mu    sync.Mutex
	calls map[string]*refreshCall
}

func newRefreshGroup() *refreshGroup {
	return &refreshGroup{calls: make(map[string]*refreshCall)}
}

func (g *refreshGroup) Do(key string, fn func() (string, bool)) (string, bool) {
	g.mu.Lock()
	if c, inflight := g.calls[key]; inflight {
		g.mu.Unlock()
		<-c.done
		return c.token, c.ok
	}

	c := &refreshCall{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.token, c.ok = fn()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.token, c.ok
}
