package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelhost/containerstd/internal/api"
)

func tagged(tag string) Func {
	return func(ctx context.Context, req *api.Request, next Next) (*api.Response, error) {
		resp, err := next(ctx, &api.Request{Body: append(req.Body, []byte(tag+">")...)})
		if err != nil {
			return nil, err
		}
		resp.Body = append(resp.Body, []byte("<"+tag)...)
		return resp, nil
	}
}

func TestChainOrder(t *testing.T) {
	entries := []Entry{
		{Name: "a", Kind: KindFunction, fn: tagged("a")},
		{Name: "b", Kind: KindFunction, fn: tagged("b")},
	}
	chain := Chain(entries, func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return &api.Response{StatusCode: 200, Body: append(req.Body, '|')}, nil
	})

	resp, err := chain(context.Background(), &api.Request{})
	require.NoError(t, err)
	assert.Equal(t, "a>b>|<b<a", string(resp.Body))
}

func TestChainEmpty(t *testing.T) {
	chain := Chain(nil, func(ctx context.Context, req *api.Request) (*api.Response, error) {
		return &api.Response{StatusCode: 204}, nil
	})
	resp, err := chain(context.Background(), &api.Request{})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
