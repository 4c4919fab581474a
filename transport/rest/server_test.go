package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounter int

func (that fixedCounter) Count() int { return int(that) }

func newTestServer() *Server {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	return New(logger, ws, fixedCounter(3))
}

func TestServer_Routes(t *testing.T) {
	handler := newTestServer().Handler()

	tests := []struct {
		name        string
		path        string
		wantCode    int
		wantBody    string
		wantJSON    string
		contentType string
	}{
		{name: "Ping", path: "/ping", wantCode: http.StatusOK, wantBody: "pong"},
		{name: "Stats", path: "/stats", wantCode: http.StatusOK, wantJSON: `{"success":true,"code":200,"extras":{"sessions":3}}`},
		{name: "Websocket is delegated", path: "/ws", wantCode: http.StatusTeapot},
		{name: "Board page", path: "/", wantCode: http.StatusOK, contentType: "text/html; charset=utf-8"},
		{name: "Unknown route", path: "/missing", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a GET request
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			// When: it is served
			handler.ServeHTTP(rec, req)

			// Then: the route answers as expected
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantJSON != "" {
				assert.JSONEq(t, tt.wantJSON, rec.Body.String())
			}
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Body.String(), "/ws")
			}
		})
	}
}

func TestServer_Start(t *testing.T) {
	t.Run("Stops when the context is canceled", func(t *testing.T) {
		// Given: a server on a random port
		server := newTestServer()
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start(ctx, "0") }()

		// When: the context is canceled
		time.Sleep(50 * time.Millisecond)
		cancel()

		// Then: it shuts down without error
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Invalid port", func(t *testing.T) {
		server := newTestServer()

		err := server.Start(context.Background(), "not-a-port")

		require.Error(t, err)
	})
}
