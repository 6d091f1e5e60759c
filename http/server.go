package http

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"warbler/auth"
	"warbler/crud"
	"warbler/domain"
)

// DefaultSessionUserKey is the name of the session cookie unless configured otherwise.
const DefaultSessionUserKey = "curr_user"

// Config holds the startup settings of the Server.
type Config struct {
	// SessionUserKey names the cookie carrying the session token.
	SessionUserKey string
	// CSRFEnabled turns on CSRF protection for unsafe methods.
	CSRFEnabled bool
	// CSRFKey is the 32 byte key the CSRF tokens are authenticated with.
	CSRFKey []byte
	// RequireAuthToView makes viewing other users' data require a login.
	RequireAuthToView bool
	// IsProd marks cookies as secure.
	IsProd bool
}

// Server provides the http functionality of this app, namely routing, request
// handling, and middleware. It also performs authentication and authorization
// before handing things over to one of the crud services.
type Server struct {
	router   *mux.Router
	cfg      Config
	logger   zerolog.Logger
	metrics  *metrics
	validate *validator.Validate

	auth *auth.Authenticator
	us   domain.UserService
	fs   domain.FollowService
	ms   domain.MessageService
	ls   domain.LikeService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(cfg Config, logger zerolog.Logger, authenticator *auth.Authenticator, services *crud.Services) *Server {
	if cfg.SessionUserKey == "" {
		cfg.SessionUserKey = DefaultSessionUserKey
	}

	s := &Server{
		router:   mux.NewRouter(),
		cfg:      cfg,
		logger:   logger,
		metrics:  newMetrics(),
		validate: newValidator(),
		auth:     authenticator,
		us:       services.User,
		fs:       services.Follow,
		ms:       services.Message,
		ls:       services.Like,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerUserRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerMessageRoutes(s.router)
	s.registerLikeRoutes(s.router)

	s.router.Handle("/metrics", s.metrics.handler()).Methods("GET")

	// Set up middleware that needs to run on every request.
	mws := []mux.MiddlewareFunc{s.observe}
	if cfg.CSRFEnabled {
		csrfMw := csrf.Protect(cfg.CSRFKey,
			csrf.Secure(cfg.IsProd),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(csrfFailure)))
		mws = append(mws, csrfMw, exposeCSRFToken)
	}
	mws = append(mws, setContentTypeJSON, s.checkUser)
	s.router.Use(mws...)
	return s
}

// ServeHTTP makes the Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens and serves on the specified port until ctx is done,
// then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", port).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// newValidator returns a validator reporting fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
