// Package httpserve exposes the resolved handlers over HTTP: the standard
// serving endpoints, the adapter lifecycle routes, and internal re-dispatch
// for router-path resolutions.
package httpserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modelhost/containerstd/internal/api"
	"github.com/modelhost/containerstd/internal/ctxlog"
	"github.com/modelhost/containerstd/internal/hosting"
	"github.com/modelhost/containerstd/internal/lora"
	"github.com/modelhost/containerstd/internal/middleware"
	"github.com/modelhost/containerstd/internal/session"
)

// Server routes serving traffic to handlers resolved per request, so
// overrides registered after startup take effect without a restart.
type Server struct {
	hosting *hosting.Hosting
	mw      *middleware.Registry
	mux     *chi.Mux
}

// New builds the router over the given hosting wiring. A nil middleware
// registry means no middleware.
func New(h *hosting.Hosting, mw *middleware.Registry) *Server {
	if mw == nil {
		mw = middleware.NewRegistry()
	}
	s := &Server{hosting: h, mw: mw, mux: chi.NewRouter()}
	s.routes()
	return s
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler { return s.mux }

// Handle registers an additional route, typically an engine front-end
// endpoint that router-path resolutions point at.
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.mux.MethodFunc(method, pattern, h)
}

func (s *Server) routes() {
	s.mux.Get("/ping", s.role(hosting.RolePing, hosting.DefaultPing(), false))
	s.mux.Post("/invocations", s.invocations())

	s.mux.Route("/adapters", func(r chi.Router) {
		r.Post("/", s.adapter(lora.RoleRegisterAdapter, ""))
		r.Get("/", s.role(lora.RoleListAdapters, nil, false))
		r.Put("/{name}", s.adapter(lora.RoleUpdateAdapter, "name"))
		r.Delete("/{name}", s.adapter(lora.RoleUnregisterAdapter, "name"))
	})
}

// role serves one resolved role. withMW wraps the dispatch in the registered
// middleware chain.
func (s *Server) role(role string, def api.Handler, withMW bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res, err := s.hosting.Resolve(ctx, role, def)
		if err != nil {
			ctxlog.FromContext(ctx).Error("Handler resolution failed.", "role", role, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "handler resolution failed", err)
			return
		}
		if !res.Found() {
			writeJSONError(w, http.StatusNotImplemented, "no handler configured", fmt.Errorf("role %q", role))
			return
		}
		if res.RouterPath != "" {
			s.redispatch(w, r, res.RouterPath)
			return
		}

		req, err := decodeRequest(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "reading request failed", err)
			return
		}
		s.dispatch(w, r, req, res.Handler, withMW)
	}
}

// invocations adds the session control protocol on top of the plain role
// dispatch: session bodies still go to the invocation handler, but the
// session identifier is reflected back as a response header.
func (s *Server) invocations() http.HandlerFunc {
	plain := s.role(hosting.RoleInvocation, nil, true)
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "reading request failed", err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if ctl, err := session.Parse(body); err == nil {
			sid := ctl.SessionID
			if ctl.RequestType == session.TypeNew && sid == "" {
				sid = uuid.NewString()
			}
			w.Header().Set(session.Header, sid)
		}
		plain(w, r)
	}
}

// adapter validates the lifecycle payload before dispatching to the resolved
// role handler. pathParam, when set, names the URL parameter folded into the
// body as adapterName.
func (s *Server) adapter(role, pathParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "reading request failed", err)
			return
		}
		if pathParam != "" {
			body, err = foldName(body, chi.URLParam(r, pathParam))
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid adapter payload", err)
				return
			}
		}
		if err := validateAdapterBody(role, body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid adapter payload", err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.role(role, nil, false)(w, r)
	}
}

func foldName(body []byte, name string) ([]byte, error) {
	obj := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, err
		}
	}
	obj["adapterName"] = name
	return json.Marshal(obj)
}

func validateAdapterBody(role string, body []byte) error {
	var req interface{ Validate() error }
	switch role {
	case lora.RoleRegisterAdapter:
		req = &lora.RegisterAdapterRequest{}
	case lora.RoleUpdateAdapter:
		req = &lora.UpdateAdapterRequest{}
	case lora.RoleUnregisterAdapter:
		req = &lora.UnregisterAdapterRequest{}
	default:
		return nil
	}
	if err := json.Unmarshal(body, req); err != nil {
		return err
	}
	return req.Validate()
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *api.Request, h api.Handler, withMW bool) {
	ctx := r.Context()
	final := middleware.Next(h)
	if withMW {
		final = middleware.Chain(s.mw.Ordered(), final)
	}
	resp, err := final(ctx, req)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Handler failed.", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "handler failed", err)
		return
	}
	writeResponse(w, resp)
}

// redispatch re-enters the router at the resolved path, so a router-path
// resolution reuses whatever is mounted there.
func (s *Server) redispatch(w http.ResponseWriter, r *http.Request, path string) {
	if path == r.URL.Path {
		writeJSONError(w, http.StatusInternalServerError, "handler resolution failed",
			fmt.Errorf("router path %q routes to itself", path))
		return
	}
	r2 := r.Clone(context.WithValue(r.Context(), chi.RouteCtxKey, nil))
	r2.URL.Path = path
	r2.RequestURI = path
	s.mux.ServeHTTP(w, r2)
}

func decodeRequest(r *http.Request) (*api.Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return &api.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	}, nil
}

func writeResponse(w http.ResponseWriter, resp *api.Response) {
	if resp == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	for name, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}
}

func writeJSONError(w http.ResponseWriter, status int, summary string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   summary,
		"message": err.Error(),
	})
}
