package gtfstime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platy/transit-radar/gtfstime"
)

func TestFromHMS(t *testing.T) {
	parsed, err := gtfstime.Parse("12:59:59")
	require.NoError(t, err)
	assert.Equal(t, gtfstime.FromHMS(12, 59, 59), parsed)
}

func TestSub(t *testing.T) {
	assert.Equal(t, 15*time.Second, gtfstime.FromHMS(12, 0, 15).Sub(gtfstime.FromHMS(12, 0, 0)))
	assert.Equal(t, -15*time.Second, gtfstime.FromHMS(12, 0, 0).Sub(gtfstime.FromHMS(12, 0, 15)))
	assert.Equal(t, 30*time.Second, gtfstime.FromHMS(12, 0, 15).Sub(gtfstime.FromHMS(11, 59, 45)))
}

func TestAdd(t *testing.T) {
	assert.Equal(t, gtfstime.FromHMS(10, 2, 0), gtfstime.FromHMS(10, 0, 0).Add(2*time.Minute))
	assert.Equal(t, gtfstime.FromHMS(9, 59, 0), gtfstime.FromHMS(10, 0, 0).Add(-time.Minute))
	assert.Panics(t, func() {
		gtfstime.FromHMS(0, 0, 30).Add(-time.Minute)
	})
}

func TestParseAndString(t *testing.T) {
	for in, out := range map[string]string{
		"00:00:00": "00:00:00",
		"00:00:01": "00:00:01",
		"23:59:59": "23:59:59",
		"24:00:00": "24:00:00",
		"25:00:00": "25:00:00",
		"5:00:00":  "05:00:00",
	} {
		parsed, err := gtfstime.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, out, parsed.String())

		again, err := gtfstime.Parse(parsed.String())
		require.NoError(t, err)
		assert.Equal(t, parsed, again)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"%%:%%:%%",
		"00:00:0",
		"00:00:000",
		"00100100",
	} {
		_, err := gtfstime.Parse(in)
		assert.ErrorIs(t, err, gtfstime.ErrInvalidFormat, in)
	}
	for _, in := range []string{"00:00:60", "00:60:00"} {
		_, err := gtfstime.Parse(in)
		assert.ErrorIs(t, err, gtfstime.ErrTooManySecondsOrMinutes, in)
	}
}

func TestPeriod(t *testing.T) {
	p := gtfstime.Between(gtfstime.FromHMS(10, 0, 0), gtfstime.FromHMS(10, 30, 0))

	assert.True(t, p.Contains(gtfstime.FromHMS(10, 0, 0)))
	assert.True(t, p.Contains(gtfstime.FromHMS(10, 29, 59)))
	assert.False(t, p.Contains(gtfstime.FromHMS(10, 30, 0)))
	assert.False(t, p.Contains(gtfstime.FromHMS(9, 59, 59)))

	assert.Equal(t, 30*time.Minute, p.Duration())
	assert.Equal(t, "10:00:00-10:30:00", p.String())

	shifted := p.WithStart(gtfstime.FromHMS(10, 15, 0))
	assert.Equal(t, gtfstime.FromHMS(10, 15, 0), shifted.Start())
	assert.Equal(t, gtfstime.FromHMS(10, 30, 0), shifted.End())

	assert.Panics(t, func() {
		gtfstime.Between(gtfstime.FromHMS(10, 0, 0), gtfstime.FromHMS(10, 0, 0))
	})
	assert.Panics(t, func() {
		p.WithStart(gtfstime.FromHMS(11, 0, 0))
	})
}
