package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/modelhost/containerstd/internal/api"
)

func TestForward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "inference-request", r.Header.Get("X-Test"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"prompt":"hi"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"completion":"hello"}`))
	}))
	defer srv.Close()

	h, err := forward(map[string]cty.Value{
		"endpoint": cty.StringVal(srv.URL + "/invoke"),
	})
	require.NoError(t, err)

	hdr := http.Header{}
	hdr.Set("X-Test", "inference-request")
	resp, err := h(context.Background(), &api.Request{
		Method: http.MethodPost,
		Header: hdr,
		Body:   []byte(`{"prompt":"hi"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"completion":"hello"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestForwardPassesEngineErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h, err := forward(map[string]cty.Value{"endpoint": cty.StringVal(srv.URL)})
	require.NoError(t, err)

	resp, err := h(context.Background(), &api.Request{Method: http.MethodPost})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestForwardValidatesArgs(t *testing.T) {
	_, err := forward(nil)
	assert.Error(t, err)

	_, err = forward(map[string]cty.Value{"endpoint": cty.NumberIntVal(8080)})
	assert.Error(t, err)

	_, err = forward(map[string]cty.Value{
		"endpoint":        cty.StringVal("http://localhost:8080"),
		"timeout_seconds": cty.NumberIntVal(0),
	})
	assert.Error(t, err)
}

func TestForwardUnreachableEndpoint(t *testing.T) {
	h, err := forward(map[string]cty.Value{
		"endpoint": cty.StringVal("http://127.0.0.1:1/nothing-listens-here"),
	})
	require.NoError(t, err)

	_, err = h(context.Background(), &api.Request{Method: http.MethodPost})
	assert.Error(t, err)
}
