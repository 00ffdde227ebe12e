package mockapi

import (
	"net/http"
	"sync"
)

// CallCounter counts requests per "METHOD /path".
type CallCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCallCounter() *CallCounter {
	return &CallCounter{counts: make(map[string]int)}
}

func (c *CallCounter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.counts[r.Method+" "+r.URL.Path]++
		c.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (c *CallCounter) Count(method, path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method+" "+path]
}

func (c *CallCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int)
}
