package server_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fieldrules/pkg/server"
)

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.New(server.Config{ShutdownTimeout: time.Second}, server.NewHandler(newValidator(t)), nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_Errors(t *testing.T) {
	t.Parallel()

	t.Run("nil handler", func(t *testing.T) {
		t.Parallel()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		err = server.New(server.Config{}, nil, nil).Serve(context.Background(), ln)
		assert.ErrorIs(t, err, server.ErrNilHandler)
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()
		srv := server.New(server.Config{Addr: "127.0.0.1:-1"}, http.NotFoundHandler(), nil)
		err := srv.Run(context.Background())()
		assert.ErrorIs(t, err, server.ErrStart)
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := server.DefaultConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}
