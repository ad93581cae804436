package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRandomGameId(t *testing.T) {
	id := GetRandomGameId(6)
	assert.Regexp(t, regexp.MustCompile(`^[a-z]{6}$`), id)
}

func TestGetUnusedGameId(t *testing.T) {
	seen := map[string]bool{}
	calls := 0
	id, err := GetUnusedGameId(6, func(candidate string) bool {
		calls++
		seen[candidate] = true
		return calls < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, seen[id])

	_, err = GetUnusedGameId(6, func(string) bool { return true })
	assert.ErrorIs(t, err, ErrNoFreeGameId)
}
