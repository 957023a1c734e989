package middleware

import (
	"context"
	"net/http"

	"hpoannotate/internal/session"
	"hpoannotate/ui/services"

	"github.com/gin-gonic/gin"
)

// sessionKey is where the resolved session is stored on gin and request contexts
const sessionKey = "annotationSession"

type contextKey struct{}

// EnsureSession is gin middleware that resolves the browser session, creating
// one and issuing its cookie when needed
func EnsureSession(svc *services.AnnotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := svc.ResolveSession(c.Writer, c.Request)
		c.Set(sessionKey, entry)
		c.Next()
	}
}

// SessionFrom returns the session stored by EnsureSession
func SessionFrom(c *gin.Context) *session.Entry {
	if v, ok := c.Get(sessionKey); ok {
		if entry, ok := v.(*session.Entry); ok {
			return entry
		}
	}
	return nil
}

// Session is the net/http form of EnsureSession, used by the chi app
func Session(svc *services.AnnotationService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := svc.ResolveSession(w, r)
			ctx := context.WithValue(r.Context(), contextKey{}, entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session stored by Session
func SessionFromContext(ctx context.Context) *session.Entry {
	entry, _ := ctx.Value(contextKey{}).(*session.Entry)
	return entry
}
