package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(0, "")
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, DefaultUserAgent, c.userAgent)

	c = NewClient(5*time.Second, "custom")
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, "custom", c.userAgent)
}

func TestClient_DownloadFile_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Write([]byte("cover-bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "Cowboy Bebop_1.jpg")
	c := NewClient(DefaultTimeout, DefaultUserAgent)
	require.NoError(t, c.DownloadFile(context.Background(), srv.URL, dest, nil))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "cover-bytes", string(data))
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantMsg string
	}{
		{"not found", http.StatusNotFound, "HTTP 404: Not Found"},
		{"server error", http.StatusInternalServerError, "HTTP 500: Internal Server Error"},
		{"not modified", http.StatusNotModified, "HTTP 304: Not Modified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(DefaultTimeout, DefaultUserAgent)
			err := c.DownloadFile(context.Background(), srv.URL, filepath.Join(t.TempDir(), "a_1.jpg"), nil)
			require.Error(t, err)

			var serr *StatusError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.status, serr.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestStatusError_UnknownCode(t *testing.T) {
	err := &StatusError{StatusCode: 599, Status: "599 Upstream Gone"}
	assert.Equal(t, "HTTP 599: 599 Upstream Gone", err.Error())
}

func TestClient_AcceptsAny2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "a_1.jpg")
	c := NewClient(DefaultTimeout, DefaultUserAgent)
	require.NoError(t, c.DownloadFile(context.Background(), srv.URL, dest, nil))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestClient_DownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new image"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "Trigun_6.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("an older and longer image"), 0644))

	var lastWritten int64
	c := NewClient(DefaultTimeout, DefaultUserAgent)
	err := c.DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new image", string(data), "existing file is overwritten")
	assert.Equal(t, int64(len("new image")), lastWritten)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestClient_DownloadFile_FailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "Missing_1.jpg")

	c := NewClient(DefaultTimeout, DefaultUserAgent)
	err := c.DownloadFile(context.Background(), srv.URL, dest, nil)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_DownloadFile_MissingDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "no-such-dir", "a_1.jpg")

	c := NewClient(DefaultTimeout, DefaultUserAgent)
	err := c.DownloadFile(context.Background(), srv.URL, dest, nil)
	assert.Error(t, err)
}

func TestProgressWriter(t *testing.T) {
	var calls int
	var sink nopWriter
	pw := &ProgressWriter{
		Writer: &sink,
		Total:  10,
		OnUpdate: func(written, total int64) {
			calls++
			assert.Equal(t, int64(10), total)
		},
	}

	pw.Write([]byte("abc"))
	pw.Write([]byte("defg"))

	assert.Equal(t, int64(7), pw.Written)
	assert.Equal(t, 2, calls)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
