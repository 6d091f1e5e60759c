package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"warbler/auth"
	"warbler/errs"
)

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// The observe middleware gives every request an id and a logger carrying it,
// then logs and counts the request once it has been served.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		logger := s.logger.With().Str("request_id", requestID).Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.observeRequest(r.Method, route, rec.status, elapsed)
		logger.Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.status).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The exposeCSRFToken middleware hands the CSRF token to the client in a header,
// so it can send it back on unsafe requests.
func exposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	errs.ReturnError(w, r, errs.Errorf(errs.EFORBIDDEN, "Invalid CSRF token."))
}

// The checkUser middleware resolves the session cookie, if any, and stores the
// user it belongs to in the request context. Requests without a valid session
// continue anonymously.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cfg.SessionUserKey)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.auth.Resolve(r.Context(), cookie.Value)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		if user == nil {
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUser(r.Context(), user)))
	})
}

// requireAuth rejects anonymous requests before they reach next.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.Require(r.Context()); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		next(w, r)
	}
}

// requireViewer guards read-only views of other users' data. It only demands
// a login if the server is configured to.
func (s *Server) requireViewer(next http.HandlerFunc) http.HandlerFunc {
	if s.cfg.RequireAuthToView {
		return s.requireAuth(next)
	}
	return next
}
