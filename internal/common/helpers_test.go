package common

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5.00"},
		{7.5, "7.50"},
		{250, "250.00"},
		{120000, "120000.00"},
		{0.125, "0.13"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in))
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 3200 ")
	require.NoError(t, err)
	assert.Equal(t, "3200.00", d.StringFixed(2))

	_, err = ParseAmount("abc")
	assert.True(t, errors.Is(err, ErrInvalidTransaction))

	_, err = ParseAmount("-5")
	assert.True(t, errors.Is(err, ErrInvalidTransaction))

	_, err = ParseAmount("0")
	assert.True(t, errors.Is(err, ErrInvalidTransaction))
}

func TestFormatMultiplier(t *testing.T) {
	assert.Equal(t, "12.5x", FormatMultiplier(12.5))
	assert.Equal(t, "5.0x", FormatMultiplier(5))
	assert.Equal(t, "1000.0x", FormatMultiplier(1000))

	v, ok := ParseMultiplier("87.5x")
	require.True(t, ok)
	assert.InDelta(t, 87.5, v, 1e-9)

	_, ok = ParseMultiplier("x")
	assert.False(t, ok)
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 10, 19, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-19", DayKey(ts, time.UTC))

	istanbul := time.FixedZone("TRT", 3*60*60)
	assert.Equal(t, "2026-10-20", DayKey(ts, istanbul))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "950", FormatNumber(950))
	assert.Equal(t, "2 350", FormatNumber(2350))
	assert.Equal(t, "1 000 000", FormatNumber(1000000))
	assert.Equal(t, "-25 000", FormatNumber(-25000))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "25 000.00 ₺", FormatMoney("25000.00", "₺"))
	assert.Equal(t, "5.00 ₺", FormatMoney("5.00", "₺"))
	assert.Equal(t, "n/a ₺", FormatMoney("n/a", "₺"))
}
