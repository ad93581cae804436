package utils

import (
	"errors"
	"math/rand"
)

const maxIdAttempts = 32

var ErrNoFreeGameId = errors.New("could not find an unused game id")

func GetRandomGameId(size int) string {
	r := make([]byte, size)
	for i := 0; i < size; i += 1 {
		offset := rand.Intn(26)
		r[i] = byte(97 + offset)
	}
	return string(r)
}

// GetUnusedGameId draws random ids until taken reports one as free.
func GetUnusedGameId(size int, taken func(string) bool) (string, error) {
	for i := 0; i < maxIdAttempts; i++ {
		id := GetRandomGameId(size)
		if !taken(id) {
			return id, nil
		}
	}
	return "", ErrNoFreeGameId
}
