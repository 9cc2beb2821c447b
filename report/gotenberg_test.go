package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.Ping(context.Background()))
}

func TestPingUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.Error(t, client.Ping(context.Background()))
}

func TestRenderHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("files")
		require.NoError(t, err)
		assert.Equal(t, "document.html", header.Filename)
		assert.Empty(t, r.FormValue("singlePage"))
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pdf, err := client.RenderHTML(context.Background(), "<html><body>hi</body></html>")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), pdf)
}

func TestRenderHTMLWithPaper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "3.15", r.FormValue("paperWidth"))
		assert.Equal(t, "16.5", r.FormValue("paperHeight"))
		assert.Equal(t, "true", r.FormValue("singlePage"))
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.RenderHTMLWithPaper(context.Background(), "<html></html>", PaperOptions{
		Width:      3.15,
		Height:     16.5,
		SinglePage: true,
	})
	require.NoError(t, err)
}

func TestRenderHTMLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.RenderHTML(context.Background(), "<html></html>")
	require.Error(t, err)
}
