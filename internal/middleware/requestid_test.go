package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	incoming := uuid.NewString()
	cases := []struct {
		name   string
		header string
		reuse  bool
	}{
		{name: "generated", header: ""},
		{name: "reused", header: incoming, reuse: true},
		{name: "invalid replaced", header: "not-a-uuid"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(RequestID())
			var seen string
			r.GET("/", func(c *gin.Context) {
				seen = c.GetString(RequestIDKey)
				c.String(200, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(RequestIDHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header=%q context=%q", got, seen)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("not a uuid: %q", got)
			}
			if tc.reuse != (got == tc.header) {
				t.Fatalf("reuse=%v header=%q got=%q", tc.reuse, tc.header, got)
			}
		})
	}
}
