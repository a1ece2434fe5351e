// Package session models the stateful-session control messages a serving
// engine may accept on its invocation endpoint. A session request either
// opens a new session or closes an existing one; everything else on the
// endpoint is a regular invocation.
package session

import (
	"encoding/json"
	"fmt"
)

// Header carrying the session identifier on follow-up requests.
const Header = "X-Session-Id"

// RequestType selects the session operation.
type RequestType string

const (
	// TypeNew opens a new session.
	TypeNew RequestType = "NEW_SESSION"
	// TypeClose closes an existing session.
	TypeClose RequestType = "CLOSE"
)

// UnmarshalJSON rejects values outside the known set.
func (t *RequestType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch RequestType(s) {
	case TypeNew, TypeClose:
		*t = RequestType(s)
		return nil
	default:
		return fmt.Errorf("unknown session request type %q", s)
	}
}

// Request is the body of a session control message.
type Request struct {
	RequestType RequestType `json:"requestType"`
	SessionID   string      `json:"sessionId,omitempty"`
}

// Parse decodes a session control message. It returns an error when the
// body is not a session request, letting callers fall through to regular
// invocation handling.
func Parse(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	if req.RequestType == "" {
		return nil, fmt.Errorf("missing requestType")
	}
	if req.RequestType == TypeClose && req.SessionID == "" {
		return nil, fmt.Errorf("sessionId is required to close a session")
	}
	return &req, nil
}
