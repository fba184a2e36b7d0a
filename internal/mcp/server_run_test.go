package mcp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-table-report/internal/config"
	"github.com/a3tai/mcp-table-report/internal/pdf"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func newModeServer(t *testing.T, mode string) (*Server, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	cfg.Mode = mode
	cfg.Port = freePort(t)
	svc, err := pdf.NewService(cfg.ServiceConfig())
	require.NoError(t, err)
	s, err := NewServer(cfg, svc)
	require.NoError(t, err)
	return s, cfg
}

func TestRunStdioModeCancelled(t *testing.T) {
	s, _ := newModeServer(t, config.ModeStdio)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stdio server did not stop after context cancellation")
	}
}

func TestRunServerModeServesSSE(t *testing.T) {
	s, cfg := newModeServer(t, config.ModeServer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	url := fmt.Sprintf("http://%s/sse", cfg.Address())
	require.Eventually(t, func() bool {
		reqCtx, reqCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer reqCancel()
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK &&
			resp.Header.Get("Content-Type") == "text/event-stream"
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("SSE server did not shut down")
	}
}

func TestRunServerModePortInUse(t *testing.T) {
	s, cfg := newModeServer(t, config.ModeServer)

	l, err := net.Listen("tcp", cfg.Address())
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = s.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to serve SSE")
}
