package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"warbler/auth"
	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/signup", s.handleSignup).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods("POST")
}

type signupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ImageURL string `json:"image_url" validate:"omitempty,max=2048"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// handleSignup creates a new user and signs it in.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := s.decode(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.Signup(r.Context(), domain.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	token, err := s.auth.Start(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventSignup)
	s.setSessionCookie(w, token)
	respond(w, r, http.StatusCreated, &userResponse{User: user})
}

// handleLogin checks the credentials and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	token, user, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errs.Is(err, errs.EAUTHFAILURE) {
			s.metrics.event(eventLoginFailed)
		}
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventLogin)
	s.setSessionCookie(w, token)
	respond(w, r, http.StatusOK, &userResponse{User: user})
}

// handleLogout ends the current session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.endSession(w, r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventLogout)
	w.WriteHeader(http.StatusNoContent)
}

// endSession drops the session of the request and clears the cookie.
func (s *Server) endSession(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(s.cfg.SessionUserKey); err == nil {
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			return err
		}
	}
	s.clearSessionCookie(w)
	return nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionUserKey,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.IsProd,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.SessionUserKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProd,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUser returns the user of an authenticated request.
// Handlers behind requireAuth can rely on it being set.
func currentUser(r *http.Request) *domain.User {
	return auth.GetUser(r.Context())
}
