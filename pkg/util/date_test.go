package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	got, ok := ParseTime("2024-10-10T10:10:10Z")
	require.True(t, ok)
	assert.Equal(t, "2024-10-10T10:10:10Z", got.UTC().Format(time.RFC3339))
}

func TestParseTimeUnixSeconds(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	assert.True(t, ParseTimeDefault("", def).Equal(def))
	assert.True(t, ParseTimeDefault("garbage", def).Equal(def))
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("7", 50))
	assert.Equal(t, 50, ParseIntDefault("", 50))
	assert.Equal(t, 50, ParseIntDefault("x", 50))
}
