package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newAuthedServer(t *testing.T) (*Server, string) {
	t.Helper()
	s := newTestServer(t)
	tok, err := s.generateJWT()
	assert.NoError(t, err)
	return s, tok
}

func doRequest(s *Server, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func Test_handleAuth_correctSecretReturnsToken(t *testing.T) {
	assert := assert.New(t)

	s := newTestServer(t)
	body, _ := json.Marshal(authRequest{Secret: "hunter2"})

	rec := doRequest(s, http.MethodPost, "/v1/auth", "", body)
	assert.Equal(http.StatusOK, rec.Code)

	var resp authResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(resp.Token)
}

func Test_handleAuth_wrongSecretIsUnauthorized(t *testing.T) {
	assert := assert.New(t)

	s := newTestServer(t)
	body, _ := json.Marshal(authRequest{Secret: "wrong"})

	rec := doRequest(s, http.MethodPost, "/v1/auth", "", body)
	assert.Equal(http.StatusUnauthorized, rec.Code)
}

func Test_protectedEndpoints_rejectMissingToken(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/v1/programs", "", []byte(`{"program":"at room1"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func createTestProgram(t *testing.T, s *Server, tok, program string) string {
	t.Helper()
	body, _ := json.Marshal(createProgramRequest{Program: program})
	rec := doRequest(s, http.MethodPost, "/v1/programs", tok, body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp createProgramResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func Test_handleCreateProgram_returnsRuleAndFactCounts(t *testing.T) {
	assert := assert.New(t)

	s, tok := newAuthedServer(t)
	body, _ := json.Marshal(createProgramRequest{Program: "at room1\nholding cup\nat X . holding Y = dropped Y"})

	rec := doRequest(s, http.MethodPost, "/v1/programs", tok, body)
	assert.Equal(http.StatusCreated, rec.Code)

	var resp createProgramResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(resp.ID)
	assert.Equal(2, resp.InitialFacts)
	assert.Equal(1, resp.Rules)
}

func Test_handleCreateProgram_malformedBodyIsBadRequest(t *testing.T) {
	s, tok := newAuthedServer(t)

	rec := doRequest(s, http.MethodPost, "/v1/programs", tok, []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_handleState_returnsInitialFacts(t *testing.T) {
	assert := assert.New(t)

	s, tok := newAuthedServer(t)
	id := createTestProgram(t, s, tok, "at room1")

	rec := doRequest(s, http.MethodGet, "/v1/programs/"+id+"/state", tok, nil)
	assert.Equal(http.StatusOK, rec.Code)

	var resp stateResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal([]string{"(at room1)"}, resp.Facts)
}

func Test_handleState_unknownSessionIsNotFound(t *testing.T) {
	s, tok := newAuthedServer(t)

	rec := doRequest(s, http.MethodGet, "/v1/programs/missing/state", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_handleStep_advancesState(t *testing.T) {
	assert := assert.New(t)

	s, tok := newAuthedServer(t)
	id := createTestProgram(t, s, tok, "holding cup\nholding X = dropped X")

	rec := doRequest(s, http.MethodPost, "/v1/programs/"+id+"/step", tok, nil)
	assert.Equal(http.StatusOK, rec.Code)

	var resp stateResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(resp.Facts, "(dropped cup)")
}

func Test_handleQuery_requiresHeadParam(t *testing.T) {
	s, tok := newAuthedServer(t)
	id := createTestProgram(t, s, tok, "at room1")

	rec := doRequest(s, http.MethodGet, "/v1/programs/"+id+"/query", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_handleQuery_matchesByHeadAndArgs(t *testing.T) {
	assert := assert.New(t)

	s, tok := newAuthedServer(t)
	id := createTestProgram(t, s, tok, "at room1\nat room2")

	rec := doRequest(s, http.MethodGet, "/v1/programs/"+id+"/query?head=at&args=room1", tok, nil)
	assert.Equal(http.StatusOK, rec.Code)

	var resp queryResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal([]string{"(at room1)"}, resp.Matches)
}

func Test_handleDump_returnsPlainText(t *testing.T) {
	assert := assert.New(t)

	s, tok := newAuthedServer(t)
	id := createTestProgram(t, s, tok, "at room1")

	rec := doRequest(s, http.MethodGet, "/v1/programs/"+id+"/dump", tok, nil)
	assert.Equal(http.StatusOK, rec.Code)
	assert.Contains(rec.Header().Get("Content-Type"), "text/plain")
	assert.NotEmpty(rec.Body.String())
}

func Test_sessionsAreIsolatedByID(t *testing.T) {
	assert := assert.New(t)

	s, tok := newAuthedServer(t)
	id1 := createTestProgram(t, s, tok, "at room1")
	id2 := createTestProgram(t, s, tok, "at room2")

	assert.NotEqual(id1, id2)

	rec := doRequest(s, http.MethodGet, "/v1/programs/"+id1+"/state", tok, nil)
	var resp stateResponse
	assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal([]string{"(at room1)"}, resp.Facts)
}
