// Package api defines the framework-neutral request, response, and handler
// types exchanged between the resolution core and the serving framework.
//
// The web framework itself is an external collaborator; these types are the
// interface boundary it is specified at.
package api

import (
	"context"
	"net/http"
)

// Request is the inbound unit of work handed to a resolved handler.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Clone returns a shallow copy with an independent header map, so formatters
// can substitute a modified request without mutating shared state.
func (r *Request) Clone() *Request {
	cp := *r
	cp.Header = r.Header.Clone()
	return &cp
}

// Response is what a handler produces.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Handler is the callable every resolution source must yield: one serving
// responsibility (health check, inference invocation, adapter lifecycle).
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Text builds a plain-text response.
func Text(status int, body string) *Response {
	h := http.Header{}
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &Response{StatusCode: status, Header: h, Body: []byte(body)}
}

// JSON builds an application/json response from a pre-encoded body.
func JSON(status int, body []byte) *Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &Response{StatusCode: status, Header: h, Body: body}
}
