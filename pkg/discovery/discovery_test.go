package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acidtib/jiji/pkg/store"
)

type fakeWriter struct {
	statements []string
}

func (f *fakeWriter) Exec(ctx context.Context, statements ...string) ([]store.Result, error) {
	f.statements = append(f.statements, statements...)
	return nil, nil
}

type nopReader struct{}

func (nopReader) Query(ctx context.Context, sql string) ([][]string, error) { return nil, nil }
func (nopReader) Scalar(ctx context.Context, sql string) (string, bool)     { return "", false }

func TestResolveFirstServiceWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("2.2.2.2\n"))
	}))
	defer srv.Close()

	d := New([]string{srv.URL}, zerolog.Nop())
	ip, ok := d.Resolve(context.Background())
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", ip)
}

func TestResolveFallsThroughOnBadBody(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-an-ip"))
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("3.3.3.3"))
	}))
	defer good.Close()

	d := New([]string{bad.URL, good.URL}, zerolog.Nop())
	ip, ok := d.Resolve(context.Background())
	require.True(t, ok)
	assert.Equal(t, "3.3.3.3", ip)
}

func TestResolveExhaustsAllServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New([]string{srv.URL}, zerolog.Nop())
	_, ok := d.Resolve(context.Background())
	assert.False(t, ok)
}

func TestUpdateIfChangedNoOpWhenAlreadyPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1.1.1.1"))
	}))
	defer srv.Close()

	d := New([]string{srv.URL}, zerolog.Nop())
	w := &fakeWriter{}
	err := UpdateIfChanged(context.Background(), d, nopReader{}, w, "self", `["1.1.1.1:31820"]`)
	require.NoError(t, err)
	assert.Empty(t, w.statements)
}

func TestUpdateIfChangedWritesOnChange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("2.2.2.2"))
	}))
	defer srv.Close()

	d := New([]string{srv.URL}, zerolog.Nop())
	w := &fakeWriter{}
	err := UpdateIfChanged(context.Background(), d, nopReader{}, w, "self", `["1.1.1.1:31820"]`)
	require.NoError(t, err)
	require.Len(t, w.statements, 1)
	assert.Contains(t, w.statements[0], `endpoints = '["2.2.2.2:31820"]'`)
	assert.Contains(t, w.statements[0], "id = 'self'")
}

func TestUpdateIfChangedNoOpWhenResolveFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New([]string{srv.URL}, zerolog.Nop())
	w := &fakeWriter{}
	err := UpdateIfChanged(context.Background(), d, nopReader{}, w, "self", "[]")
	require.NoError(t, err)
	assert.Empty(t, w.statements)
}
