package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"valid", Params{"ASIA", "1994-01-01", "1995-01-01", 4}, true},
		{"no region", Params{"", "1994-01-01", "1995-01-01", 4}, false},
		{"bad start", Params{"ASIA", "1994/01/01", "1995-01-01", 4}, false},
		{"bad end", Params{"ASIA", "1994-01-01", "1995-13-01", 4}, false},
		{"zero threads", Params{"ASIA", "1994-01-01", "1995-01-01", 0}, false},
		{"negative threads", Params{"ASIA", "1994-01-01", "1995-01-01", -2}, false},
	}
	for _, c := range cases {
		err := c.p.Validate()
		if c.ok {
			assert.NoError(t, err, c.name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidParams, c.name)
		}
	}
}

func TestParamsClampThreads(t *testing.T) {
	p := Params{"ASIA", "1994-01-01", "1995-01-01", MaxThreads * 4}
	assert.NoError(t, p.Validate())
	assert.Equal(t, MaxThreads, p.Threads)
}

func TestParamsWindow(t *testing.T) {
	p := Params{StartDate: "1994-01-01", EndDate: "1995-01-01"}
	assert.True(t, p.inWindow("1994-01-01"))
	assert.True(t, p.inWindow("1994-12-31"))
	assert.False(t, p.inWindow("1995-01-01"))
	assert.False(t, p.inWindow("1993-12-31"))
}
