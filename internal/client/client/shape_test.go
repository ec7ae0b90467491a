package client

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestMatchCollection(t *testing.T) {
	tests := []struct {
		body  string
		shape string
		n     int
	}{
		{body: `[1,2]`, shape: "array", n: 2},
		{body: `{"data":[1]}`, shape: "data", n: 1},
		{body: `{"results":[1,2,3]}`, shape: "results", n: 3},
		{body: `{"items":[]}`, shape: "items", n: 0},
		{body: `{"items":[1],"results":[1,2]}`, shape: "results", n: 2},
	}
	for _, tt := range tests {
		entries, shape, err := MatchCollection([]byte(tt.body))
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.shape, shape, tt.body)
		assert.Len(t, entries, tt.n, tt.body)
	}

	for _, bad := range []string{``, `{`, `{"rows":[]}`, `null`, `3`} {
		_, _, err := MatchCollection([]byte(bad))
		assert.ErrorIs(t, err, common.ErrInvalidResponseShape, bad)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2025-01-01T00:00:00.000+0000", "2025-01-01T00:00:00Z", "2025-01-01T02:00:00+02:00"} {
		assert.True(t, parseTimestamp(s).Equal(want), s)
	}
	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("01/01/2025").IsZero())
}

func TestDecodeScan(t *testing.T) {
	r, ok := decodeScan(gjson.Parse(`{"code":123,"eventCategory":"scan","eventName":"label"}`))
	require.True(t, ok)
	assert.Equal(t, "123", r.Code)
	assert.Equal(t, "label", r.EventLabel)

	r, ok = decodeScan(gjson.Parse(`{"code":"  hello  "}`))
	require.True(t, ok)
	assert.Equal(t, "  hello  ", r.Code)

	r, ok = decodeScan(gjson.Parse(`{"code":"  ","eventName":"label"}`))
	require.True(t, ok)
	assert.Equal(t, "label", r.Code)

	_, ok = decodeScan(gjson.Parse(`{"code":null}`))
	assert.False(t, ok)
	_, ok = decodeScan(gjson.Parse(`{"code":{"nested":1}}`))
	assert.False(t, ok)
}
