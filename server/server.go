// Package server provides a small HTTP read/control API around a set of
// in-memory loom engine sessions, one program per session, authenticated
// with a single bootstrap bearer token.
package server

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	loomengine "github.com/holsten/loom/internal/loom"
	"github.com/holsten/loom/server/result"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the settings needed to start a Server, normally loaded from
// a TOML file by cmd/loomsrv.
type Config struct {
	// ListenAddress is the address to bind, e.g. "localhost:8080".
	ListenAddress string

	// BootstrapSecret is the plaintext shared secret clients exchange for a
	// bearer token via POST /v1/auth. It is hashed with bcrypt at startup
	// and never stored in plaintext past that point.
	BootstrapSecret string

	// Seed seeds the RNG of every engine session created by this server,
	// unless the create request supplies its own seed. A zero Seed is used
	// as-is; FillDefaults replaces it with 1.
	Seed int64
}

// Server owns a set of named engine sessions and the credentials needed to
// authorize requests against them.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*session

	jwtSecret       []byte
	adminSecretHash []byte
	seed            int64
}

// session pairs an engine Context with a mutex so that exactly one
// goroutine touches a given Context at a time; the Server itself only
// ever holds its own mutex long enough to look a session up.
type session struct {
	mu  sync.Mutex
	ctx *loomengine.Context
}

// New builds a Server from cfg, generating a random JWT signing secret and
// hashing the bootstrap secret with bcrypt, checked against a single
// operator-configured secret rather than a user table.
func New(cfg Config) (*Server, error) {
	if cfg.BootstrapSecret == "" {
		return nil, fmt.Errorf("server: BootstrapSecret must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap secret: %w", err)
	}

	jwtSecret := make([]byte, 64)
	if _, err := rand.Read(jwtSecret); err != nil {
		return nil, fmt.Errorf("generate JWT secret: %w", err)
	}

	return &Server{
		sessions:        make(map[string]*session),
		jwtSecret:       jwtSecret,
		adminSecretHash: hash,
		seed:            cfg.Seed,
	}, nil
}

// Router builds the chi router for the HTTP host's API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.logger)

	r.Post("/v1/auth", s.handleAuth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/v1/programs", s.handleCreateProgram)
		r.Post("/v1/programs/{id}/step", s.handleStep)
		r.Get("/v1/programs/{id}/state", s.handleState)
		r.Get("/v1/programs/{id}/query", s.handleQuery)
		r.Get("/v1/programs/{id}/dump", s.handleDump)
	})

	return r
}

// ListenAndServe starts the HTTP host and blocks until it returns an error.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("INFO  loomsrv listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) lookupSession(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				result.InternalServerError("panic: %v\n%s", p, debug.Stack()).WriteResponse(w)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func (s *Server) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		log.Printf("INFO  %s %s (%s)", req.Method, req.URL.Path, time.Since(start))
	})
}

func (s *Server) unauthorized(w http.ResponseWriter, req *http.Request, err error) {
	result.Unauthorized("", err.Error()).WriteResponse(w)
}

func newSessionID() string {
	return uuid.NewString()
}
