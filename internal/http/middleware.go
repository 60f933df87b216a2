package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/go_pos/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	SessionHeader = "X-POS-Session"
	SessionCookie = "pos_session"

	maxSessionIDLen = 128
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionMiddleware resolves the POS session from the header or cookie, issuing a new
// cookie when the client has neither.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}
		}
		if id == "" || len(id) > maxSessionIDLen {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, id)

		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger logs one line per request with status and latency.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.FromContext(r.Context(), base).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("session_id", ww.Header().Get(SessionHeader)),
			)
		})
	}
}

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SessionRateLimiter gives each session its own token bucket. Buckets idle for
// limiterIdleTTL and back at full burst are dropped.
type SessionRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func NewSessionRateLimiter(limit rate.Limit, burst int) *SessionRateLimiter {
	return &SessionRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     limit,
		burst:     burst,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (rl *SessionRateLimiter) getLimiter(id string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterSweepInterval {
		rl.sweep(now)
	}

	if e, ok := rl.limiters[id]; ok {
		e.lastSeen = now
		return e.limiter
	}
	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[id] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// sweep drops idle buckets that have refilled. Callers hold rl.mu.
func (rl *SessionRateLimiter) sweep(now time.Time) {
	rl.lastSweep = now
	for id, e := range rl.limiters {
		if now.Sub(e.lastSeen) >= limiterIdleTTL && e.limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, id)
		}
	}
}

func (rl *SessionRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(getSessionID(r.Context())).AllowN(rl.now(), 1) {
			respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many checkout attempts, please wait")
			return
		}
		next.ServeHTTP(w, r)
	})
}
