package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIDList(t *testing.T) {
	t.Run("DropsInvalidAndDeduplicates", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2}, ParseIDList("1,2,foo,2,-1"))
	})

	t.Run("PreservesFirstSeenOrder", func(t *testing.T) {
		assert.Equal(t, []int64{5, 3, 9}, ParseIDList("5,3,5,9,3"))
	})

	t.Run("Idempotent", func(t *testing.T) {
		first := ParseIDList("7, 7,8,abc,0")
		joined := "7,8"
		assert.Equal(t, first, ParseIDList(joined))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, ParseIDList(""))
		assert.Nil(t, ParseIDList("   "))
		assert.Nil(t, ParseIDList("foo,bar,-3,0"))
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2, 3}, ParseIDList(" 1 , 2 ,3"))
	})
}

func TestNormalizeIDs(t *testing.T) {
	assert.Equal(t, []int64{4, 1}, NormalizeIDs([]int64{4, -2, 4, 0, 1}))
	assert.Nil(t, NormalizeIDs(nil))
	assert.Nil(t, NormalizeIDs([]int64{0, -1}))
}

func TestParseLimit(t *testing.T) {
	t.Run("FallbackOnInvalid", func(t *testing.T) {
		assert.Equal(t, 20, ParseLimit("", 20))
		assert.Equal(t, 20, ParseLimit("abc", 20))
		assert.Equal(t, 20, ParseLimit("-5", 20))
		assert.Equal(t, 20, ParseLimit("0", 20))
	})

	t.Run("ClampsToMax", func(t *testing.T) {
		assert.Equal(t, 100, ParseLimit("999", 20))
		assert.Equal(t, 100, ParseLimit("101", 20))
	})

	t.Run("PassesThroughValid", func(t *testing.T) {
		assert.Equal(t, 12, ParseLimit("12", 20))
		assert.Equal(t, 100, ParseLimit("100", 20))
		assert.Equal(t, 1, ParseLimit("1", 20))
	})

	t.Run("BadFallbackStillBounded", func(t *testing.T) {
		assert.Equal(t, DefaultLimit, ParseLimit("junk", 0))
	})
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "True", "1"}
	for _, raw := range truthy {
		v := ParseBool(raw)
		if assert.NotNil(t, v, raw) {
			assert.True(t, *v, raw)
		}
	}

	falsy := []string{"false", "FALSE", "0"}
	for _, raw := range falsy {
		v := ParseBool(raw)
		if assert.NotNil(t, v, raw) {
			assert.False(t, *v, raw)
		}
	}

	// Anything else means "filter not applied", never false.
	for _, raw := range []string{"", "yes", "no", "2", "null"} {
		assert.Nil(t, ParseBool(raw), raw)
	}
}
