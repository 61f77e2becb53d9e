package pkg

import "github.com/google/uuid"

// GenerateGameID - generates a new unique game id.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateNewSessionID - generates a new unique player session id.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
