package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtIssuer  = "loomsrv"
	jwtSubject = "admin"
	tokenTTL   = time.Hour
)

// authKey is a key in the context of a request populated by requireAuth. The
// HTTP host has exactly one principal (the bootstrap admin token), so unlike
// a multi-user system there is no user record to attach, only the fact that
// the bearer was valid.
type authKey int

const authOK authKey = iota

func withAuthOK(ctx context.Context) context.Context {
	return context.WithValue(ctx, authOK, true)
}

// generateJWT signs a short-lived token for the single bootstrap principal.
func (s *Server) generateJWT() (string, error) {
	claims := jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": jwtSubject,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(s.jwtSecret)
}

// verifySecret compares the plaintext secret a caller presents to the
// bcrypt hash computed from the configured bootstrap secret at startup.
func (s *Server) verifySecret(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword(s.adminSecretHash, []byte(plaintext))
	return err == nil
}

func getBearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

func (s *Server) validateBearer(tok string) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithSubject(jwtSubject),
		jwt.WithLeeway(time.Minute))
	return err
}

// requireAuth is chi middleware that rejects any request without a valid
// bearer token signed by this server's generateJWT.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tok, err := getBearerToken(req)
		if err != nil {
			s.unauthorized(w, req, err)
			return
		}

		if err := s.validateBearer(tok); err != nil {
			s.unauthorized(w, req, err)
			return
		}

		next.ServeHTTP(w, req.WithContext(withAuthOK(req.Context())))
	})
}
