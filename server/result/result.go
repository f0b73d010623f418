// Package result contains the response envelope used by every HTTP endpoint
// in server, and constructors for the handful of response shapes the API
// needs.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON body of any non-2xx Result.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is a prepared HTTP response: a status code, a JSON (or, for Text
// and TextErr, plain-text) body, and an internal message for request logging
// that is never shown to the caller.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string

	respJSONBytes []byte
}

// OK returns a Result containing an HTTP-200 with respObj as its JSON body.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	return response(http.StatusOK, respObj, "OK", internalMsg...)
}

// Created returns a Result containing an HTTP-201 with respObj as its JSON
// body.
func Created(respObj interface{}, internalMsg ...interface{}) Result {
	return response(http.StatusCreated, respObj, "created", internalMsg...)
}

// BadRequest returns a Result containing an HTTP-400 with userMsg as the
// displayed error.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return errResult(http.StatusBadRequest, userMsg, "bad request", internalMsg...)
}

// Unauthorized returns a Result containing an HTTP-401 with the standard
// WWW-Authenticate header set.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return errResult(http.StatusUnauthorized, userMsg, "unauthorized", internalMsg...).
		WithHeader("WWW-Authenticate", `Bearer realm="loom server"`)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	return errResult(http.StatusNotFound, "The requested resource was not found", "not found", internalMsg...)
}

// InternalServerError returns a Result containing an HTTP-500. internalMsg
// is never shown to the caller.
func InternalServerError(internalMsg ...interface{}) Result {
	return errResult(http.StatusInternalServerError, "An internal server error occurred", "internal server error", internalMsg...)
}

// TextErr is like an error Result but writes a plain-text body instead of
// JSON.
func TextErr(status int, userMsg string, internalMsg ...interface{}) Result {
	msg := formatInternal("text error", internalMsg)
	return Result{Status: status, IsErr: true, InternalMsg: msg, resp: userMsg}
}

// Text returns a Result with a plain-text body, used by the /dump endpoint.
func Text(status int, body string, internalMsg ...interface{}) Result {
	msg := formatInternal("OK", internalMsg)
	return Result{Status: status, InternalMsg: msg, resp: body}
}

func response(status int, respObj interface{}, defaultMsg string, internalMsg ...interface{}) Result {
	msg := formatInternal(defaultMsg, internalMsg)
	return Result{IsJSON: true, Status: status, InternalMsg: msg, resp: respObj}
}

func errResult(status int, userMsg, defaultMsg string, internalMsg ...interface{}) Result {
	msg := formatInternal(defaultMsg, internalMsg)
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: msg,
		resp:        ErrorResponse{Error: userMsg, Status: status},
	}
}

func formatInternal(defaultMsg string, internalMsg []interface{}) string {
	if len(internalMsg) == 0 {
		return defaultMsg
	}
	format, _ := internalMsg[0].(string)
	return fmt.Sprintf(format, internalMsg[1:]...)
}

// WithHeader returns a copy of r with an additional response header set.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return cp
}

// PrepareMarshaledResponse marshals r's body to JSON ahead of time so that
// WriteResponse never fails partway through writing headers.
func (r *Result) PrepareMarshaledResponse() error {
	if !r.IsJSON || r.respJSONBytes != nil {
		return nil
	}
	var err error
	r.respJSONBytes, err = json.Marshal(r.resp)
	return err
}

// WriteResponse writes r to w, sending JSON for IsJSON results and plain
// text otherwise.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	if err := r.PrepareMarshaledResponse(); err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var body []byte
	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		body = r.respJSONBytes
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		body = []byte(fmt.Sprintf("%v", r.resp))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}

	w.WriteHeader(r.Status)
	w.Write(body)
}
