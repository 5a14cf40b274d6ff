package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "preflight allowed", allowed: []string{"https://app.example/"}, method: http.MethodOptions, origin: "https://app.example", wantStatus: http.StatusNoContent, wantOrigin: "https://app.example"},
		{name: "preflight rejected", allowed: []string{"https://app.example"}, method: http.MethodOptions, origin: "https://evil.example", wantStatus: http.StatusNoContent},
		{name: "simple request allowed", allowed: []string{"https://app.example"}, method: http.MethodGet, origin: "https://app.example", wantStatus: http.StatusOK, wantOrigin: "https://app.example"},
		{name: "wildcard echoes origin", allowed: []string{"*"}, method: http.MethodGet, origin: "http://localhost:5173", wantStatus: http.StatusOK, wantOrigin: "http://localhost:5173"},
		{name: "no origin header", allowed: []string{"*"}, method: http.MethodGet, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/events", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()

			CORS(tt.allowed, next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_PreservesHijacker(t *testing.T) {
	var isHijacker bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, isHijacker = w.(http.Hijacker)
	})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://app.example")

	CORS([]string{"*"}, next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, isHijacker)
}
