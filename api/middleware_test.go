package api

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func gzipBody(t *testing.T, payload string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(payload)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return &buf
}

func TestGzipRequestMiddlewareDecompresses(t *testing.T) {
	e := echo.New()
	e.Use(GzipRequestMiddleware(0))
	e.POST("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", gzipBody(t, `{"title":"ok"}`))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if rec.Body.String() != `{"title":"ok"}` {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestGzipRequestMiddlewarePassThrough(t *testing.T) {
	e := echo.New()
	e.Use(GzipRequestMiddleware(0))
	e.POST("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("plain"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "plain" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestGzipRequestMiddlewareRejectsInvalidGzip(t *testing.T) {
	e := echo.New()
	e.Use(GzipRequestMiddleware(0))
	e.POST("/echo", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("not gzip at all"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestGzipRequestMiddlewareCapsDecompressedSize(t *testing.T) {
	e := echo.New()
	e.Use(GzipRequestMiddleware(16))
	e.POST("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", gzipBody(t, strings.Repeat("a", 1024)))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := len(rec.Body.String()); got != 16 {
		t.Fatalf("expected body capped at 16 bytes, got %d", got)
	}
}

func TestHasGzipEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"gzip", true},
		{"GZIP", true},
		{"br, gzip", true},
		{"identity", false},
	}
	for _, tc := range tests {
		if got := hasGzipEncoding(tc.header); got != tc.want {
			t.Errorf("hasGzipEncoding(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
