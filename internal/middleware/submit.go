// internal/middleware/submit.go
package middleware

import (
	"sync"

	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

// SubmitGuard rejects a mutation while an identical one from the same
// session is still being processed, so double clicks do not submit twice.
type SubmitGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{inFlight: make(map[string]struct{})}
}

func (g *SubmitGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *SubmitGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}

func (g *SubmitGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
			return
		}

		owner := c.ClientIP()
		if sess := SessionFromContext(c); sess != nil {
			owner = sess.ID().String()
		}
		key := owner + " " + c.Request.Method + " " + c.Request.URL.Path

		if !g.acquire(key) {
			utils.ConflictResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyRequestInFlight))
			c.Abort()
			return
		}
		defer g.release(key)

		c.Next()
	}
}
