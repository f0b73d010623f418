package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	loomengine "github.com/holsten/loom/internal/loom"
	"github.com/holsten/loom/server/result"
)

// authRequest is the body of POST /v1/auth.
type authRequest struct {
	Secret string `json:"secret"`
}

// authResponse is the body returned by a successful POST /v1/auth.
type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleAuth(w http.ResponseWriter, req *http.Request) {
	var body authRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		result.BadRequest("malformed request body", err.Error()).WriteResponse(w)
		return
	}

	if !s.verifySecret(body.Secret) {
		result.Unauthorized("incorrect secret").WriteResponse(w)
		return
	}

	tok, err := s.generateJWT()
	if err != nil {
		result.InternalServerError("generate JWT: %s", err.Error()).WriteResponse(w)
		return
	}

	result.OK(authResponse{
		Token:     tok,
		ExpiresAt: time.Now().Add(tokenTTL).Format(time.RFC3339),
	}).WriteResponse(w)
}

// createProgramRequest is the body of POST /v1/programs.
type createProgramRequest struct {
	Program string `json:"program"`
	Seed    *int64 `json:"seed"`
}

type createProgramResponse struct {
	ID           string `json:"id"`
	Rules        int    `json:"rules"`
	InitialFacts int    `json:"initial_facts"`
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, req *http.Request) {
	var body createProgramRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		result.BadRequest("malformed request body", err.Error()).WriteResponse(w)
		return
	}

	seed := s.seed
	if body.Seed != nil {
		seed = *body.Seed
	}

	ctx, err := loomengine.FromText(body.Program, rand.New(rand.NewSource(seed)))
	if err != nil {
		result.BadRequest(err.Error(), err.Error()).WriteResponse(w)
		return
	}

	id := newSessionID()
	s.mu.Lock()
	s.sessions[id] = &session{ctx: ctx}
	s.mu.Unlock()

	result.Created(createProgramResponse{
		ID:           id,
		Rules:        len(ctx.Program.Rules),
		InitialFacts: len(ctx.Program.InitialState),
	}).WriteResponse(w)
}

// getURLParamSession resolves the {id} path segment of req to a live
// session, writing a 404 Result and returning ok=false if it is unknown.
func (s *Server) getURLParamSession(w http.ResponseWriter, req *http.Request) (*session, bool) {
	id := chi.URLParam(req, "id")
	if id == "" {
		result.BadRequest("missing program id").WriteResponse(w)
		return nil, false
	}

	sess, ok := s.lookupSession(id)
	if !ok {
		result.NotFound("no such session %q", id).WriteResponse(w)
		return nil, false
	}
	return sess, true
}

type stateResponse struct {
	Facts []string `json:"facts"`
}

func (s *Server) handleStep(w http.ResponseWriter, req *http.Request) {
	sess, ok := s.getURLParamSession(w, req)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// No side predicate can be answered over this transport: a bearer
	// client has no open channel to respond with. Programs relying on
	// side predicates should be driven from the console host instead.
	if err := sess.ctx.Step(nil); err != nil {
		result.InternalServerError(err.Error()).WriteResponse(w)
		return
	}

	result.OK(stateFacts(sess.ctx)).WriteResponse(w)
}

func (s *Server) handleState(w http.ResponseWriter, req *http.Request) {
	sess, ok := s.getURLParamSession(w, req)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result.OK(stateFacts(sess.ctx)).WriteResponse(w)
}

func stateFacts(ctx *loomengine.Context) stateResponse {
	facts := make([]string, len(ctx.State))
	for i, f := range ctx.State {
		facts[i] = ctx.PhraseText(f)
	}
	return stateResponse{Facts: facts}
}

type queryResponse struct {
	Matches []string `json:"matches"`
}

func (s *Server) handleQuery(w http.ResponseWriter, req *http.Request) {
	sess, ok := s.getURLParamSession(w, req)
	if !ok {
		return
	}

	q := req.URL.Query()
	head := q.Get("head")
	if head == "" {
		result.BadRequest("?head= query parameter is required").WriteResponse(w)
		return
	}
	rest := q["args"]

	sess.mu.Lock()
	defer sess.mu.Unlock()

	phrases := sess.ctx.FindPhrases(head, rest...)
	matches := make([]string, len(phrases))
	for i, p := range phrases {
		matches[i] = sess.ctx.PhraseText(p)
	}

	result.OK(queryResponse{Matches: matches}).WriteResponse(w)
}

func (s *Server) handleDump(w http.ResponseWriter, req *http.Request) {
	sess, ok := s.getURLParamSession(w, req)
	if !ok {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result.Text(http.StatusOK, sess.ctx.Print()).WriteResponse(w)
}
