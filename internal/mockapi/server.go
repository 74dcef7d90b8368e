// Package mockapi is a local stand-in for the FutureProof backend. It serves
// the auth and onboarding endpoints the client talks to so the CLI can be
// exercised end to end without the real service. Accounts live in memory or,
// with a SQLiteStore, in a database file.
package mockapi

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"time"

	"futureproof/internal/api"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	MinPasswordLen  = 8
	shutdownTimeout = 5 * time.Second
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Options configures a Server.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Endpoints api.Endpoints
	Logger    *zap.Logger

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int

	// Store holds the accounts; nil keeps them in memory.
	Store Store
}

// User is an account held by the mock.
type User struct {
	ID                 int64             `json:"id"`
	FullName           string            `json:"full_name"`
	Email              string            `json:"email"`
	Role               string            `json:"role"`
	HasTakenOnboarding bool              `json:"has_taken_onboarding"`
	CreatedAt          time.Time         `json:"created_at"`
	Assessment         map[string]string `json:"-"`
	CVName             string            `json:"-"`
}

// Server holds the accounts and the fiber app that serves them.
type Server struct {
	app        *fiber.App
	tokens     *tokenIssuer
	logger     *zap.Logger
	bcryptCost int
	store      Store
}

// New builds a Server with its routes mounted.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	ep := opts.Endpoints
	d := api.DefaultEndpoints()
	if ep.Login == "" {
		ep.Login = d.Login
	}
	if ep.Signup == "" {
		ep.Signup = d.Signup
	}
	if ep.Me == "" {
		ep.Me = d.Me
	}
	if ep.OnboardingSubmit == "" {
		ep.OnboardingSubmit = d.OnboardingSubmit
	}

	s := &Server{
		tokens:     newTokenIssuer(opts.JWTSecret, opts.TokenTTL),
		logger:     opts.Logger,
		bcryptCost: opts.BcryptCost,
		store:      opts.Store,
	}

	app := fiber.New(fiber.Config{
		AppName:               "FutureProof mock API",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(s.requestLogger)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	app.Post(ep.Signup, s.signup)
	app.Post(ep.Login, s.login)
	app.Get(ep.Me, s.requireToken, s.me)
	app.Post(ep.OnboardingSubmit, s.requireToken, s.submitOnboarding)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Listener(ln) }()

	s.logger.Info("mock API listening", zap.String("addr", ln.Addr().String()))
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		return <-errc
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// User returns the account registered under email.
func (s *Server) User(email string) (User, bool) {
	u, _, err := s.store.UserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, false
	}
	return *u, true
}

// Close releases the account store.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.String("request_id", c.Get(api.RequestIDHeader)),
		zap.Duration("took", time.Since(start)))
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusNotFound {
		return c.Status(code).JSON(fiber.Map{"error": "Endpoint not found"})
	}
	s.logger.Warn("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
