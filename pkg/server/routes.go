package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// handler registers all HTTP routes and wraps them in middleware.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/graphs", func(w http.ResponseWriter, r *http.Request) {
		s.handleGraphs(w, r)
	})

	mux.Handle("/metrics", s.metrics.handler())

	// Serve drawn graphs from the graphDir
	if s.drawer != nil {
		imgFS := http.FileServer(http.Dir(s.cfg.GraphDir))
		mux.Handle("/imgs/", noCacheMiddleware(imgFS))
	}

	return requireGET(newRateLimitMiddleware(s.limiter)(mux))
}

// requireGET rejects every method other than GET and HEAD.
func requireGET(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newRateLimitMiddleware answers 429 once the token bucket is empty.
func newRateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
