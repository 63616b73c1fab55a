package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Store is the backend for the public response cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// entry holds a cached value and its expiration time.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory Store with lazy expiration.
type MemoryStore struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

// Get retrieves a value, deleting it and reporting a miss if expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.data, true
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{data: value, expiresAt: time.Now().Add(ttl)}
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// StartCleanup runs a background goroutine that periodically removes expired
// entries. It stops when the context is cancelled.
func (s *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				now := time.Now()
				for k, v := range s.entries {
					if now.After(v.expiresAt) {
						delete(s.entries, k)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}

// bodyCapture tees the response body so a successful render can be cached.
type bodyCapture struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (w *bodyCapture) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

// cachedResponse is the stored envelope. The public group serves JSON, CSV
// and PDF from the same cache, so the headers that identify the payload
// must be replayed with the body.
type cachedResponse struct {
	ContentType string `json:"content_type"`
	Disposition string `json:"disposition,omitempty"`
	Body        []byte `json:"body"`
}

// Middleware caches successful GET responses keyed by path+query for the
// given TTL. Intended for the unauthenticated public report routes, which
// are read-heavy and change only when a schedule is re-opened.
func Middleware(store Store, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet || ttl <= 0 {
				return next(c)
			}

			key := c.Request().URL.RequestURI()
			ctx := c.Request().Context()
			if data, ok := store.Get(ctx, key); ok {
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					if cached.Disposition != "" {
						c.Response().Header().Set(echo.HeaderContentDisposition, cached.Disposition)
					}
					return c.Blob(http.StatusOK, cached.ContentType, cached.Body)
				}
				store.Delete(ctx, key)
			}

			capture := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = capture
			c.Response().Header().Set("X-Cache", "MISS")

			err := next(c)
			if err == nil && capture.status == http.StatusOK && len(capture.body) > 0 {
				contentType := c.Response().Header().Get(echo.HeaderContentType)
				if contentType == "" {
					contentType = echo.MIMEApplicationJSON
				}
				data, mErr := json.Marshal(cachedResponse{
					ContentType: contentType,
					Disposition: c.Response().Header().Get(echo.HeaderContentDisposition),
					Body:        capture.body,
				})
				if mErr == nil {
					store.Set(ctx, key, data, ttl)
				}
			}
			return err
		}
	}
}
