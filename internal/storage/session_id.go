package storage

import "github.com/google/uuid"

func newSessionID() string {
	return uuid.New().String()
}
