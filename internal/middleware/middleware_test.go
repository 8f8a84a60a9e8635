package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/athabaska/Gazprom-power/internal/domain/dto"
)

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name    string
		handler gin.HandlerFunc
		want    int
		message string
	}{
		{
			name:    "plain error becomes 500",
			handler: func(c *gin.Context) { _ = c.Error(assertErr{}) },
			want:    http.StatusInternalServerError,
			message: "Internal server error",
		},
		{
			name: "error response keeps status and message",
			handler: func(c *gin.Context) {
				c.Status(http.StatusConflict)
				_ = c.Error(dto.NewErrorResponse("scheduler is stopped", nil))
			},
			want:    http.StatusConflict,
			message: "scheduler is stopped",
		},
		{
			name: "written response untouched",
			handler: func(c *gin.Context) {
				c.String(http.StatusTeapot, "short and stout")
				_ = c.Error(assertErr{})
			},
			want: http.StatusTeapot,
		},
		{
			name:    "no error",
			handler: func(c *gin.Context) { c.Status(http.StatusNoContent) },
			want:    http.StatusNoContent,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(ErrorHandler)
			r.GET("/", tc.handler)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != tc.want {
				t.Fatalf("code=%d want %d", w.Code, tc.want)
			}
			if tc.message != "" {
				var body dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if body.Message != tc.message {
					t.Fatalf("message=%q want %q", body.Message, tc.message)
				}
			}
		})
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RecoveryMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != 500 {
		t.Fatalf("code=%d", w.Code)
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.ErrorDetails != "boom" {
		t.Fatalf("unexpected body %q err=%v", w.Body.String(), err)
	}
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		AbortWithError(c, http.StatusBadRequest, "bad stuff", assertErr{})
	})
	r.GET("/nil", func(c *gin.Context) {
		AbortWithError(c, http.StatusConflict, "already paused", nil)
	})

	for path, want := range map[string]int{"/err": http.StatusBadRequest, "/nil": http.StatusConflict} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Fatalf("%s: code=%d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct == "" {
			t.Fatalf("expected content-type set")
		}
	}
}

func TestEventFor(t *testing.T) {
	l := zerolog.New(nil).Level(zerolog.DebugLevel)
	cases := []struct {
		path   string
		status int
		want   zerolog.Level
	}{
		{"/api/v1/status", 200, zerolog.InfoLevel},
		{"/healthz", 200, zerolog.DebugLevel},
		{"/readyz", 503, zerolog.ErrorLevel},
		{"/api/v1/pause", 409, zerolog.WarnLevel},
	}
	for _, tc := range cases {
		var got zerolog.Level
		hook := zerolog.HookFunc(func(_ *zerolog.Event, level zerolog.Level, _ string) { got = level })
		hooked := l.Hook(hook)
		eventFor(&hooked, tc.path, tc.status).Msg("x")
		if got != tc.want {
			t.Fatalf("%s %d: want %s got %s", tc.path, tc.status, tc.want, got)
		}
	}
}
