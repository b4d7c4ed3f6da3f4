package httpapi

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Faults makes the next requests under a path prefix fail with a fixed status.
// Zero value injects nothing.
type Faults struct {
	mu        sync.Mutex
	prefix    string
	status    int
	remaining int
	hits      map[string]int
}

// FailNext fails the next n requests whose path starts with prefix
func (f *Faults) FailNext(prefix string, n, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefix, f.remaining, f.status = prefix, n, status
}

// Remaining reports how many injected failures are still pending
func (f *Faults) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remaining
}

// Hits counts requests seen for an exact path
func (f *Faults) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *Faults) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		f.mu.Lock()
		if f.hits == nil {
			f.hits = make(map[string]int)
		}
		f.hits[path]++
		inject := f.remaining > 0 && strings.HasPrefix(path, f.prefix)
		status := f.status
		if inject {
			f.remaining--
		}
		f.mu.Unlock()

		if inject {
			c.AbortWithStatusJSON(status, response{Message: "injected failure"})
			return
		}
		c.Next()
	}
}
