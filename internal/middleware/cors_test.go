package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	tests := []struct {
		name    string
		allowed []string
		origin  string
		method  string
		want    string
		status  int
	}{
		{name: "listed origin", allowed: []string{"http://salon.local"}, origin: "http://salon.local", method: http.MethodGet, want: "http://salon.local", status: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"http://salon.local"}, origin: "http://evil.local", method: http.MethodGet, want: "", status: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://any.local", method: http.MethodGet, want: "*", status: http.StatusOK},
		{name: "preflight", allowed: []string{"*"}, origin: "http://any.local", method: http.MethodOptions, want: "*", status: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/styles", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("allow origin = %q, want %q", got, tc.want)
			}
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}
