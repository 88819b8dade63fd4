package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	scalar string
	ok     bool
}

func (f fakeReader) Query(ctx context.Context, sql string) ([][]string, error) { return nil, nil }
func (f fakeReader) Scalar(ctx context.Context, sql string) (string, bool)     { return f.scalar, f.ok }

func TestNowMillis(t *testing.T) {
	ms, err := NowMillis(context.Background(), fakeReader{scalar: "1700000000000", ok: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ms)
}

func TestNowMillisNoRows(t *testing.T) {
	_, err := NowMillis(context.Background(), fakeReader{ok: false})
	assert.Error(t, err)
}
