package idgen

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// UuidGenerator hands out random (v4) uuids for players,
// ships and game sessions.
type UuidGenerator struct{}

func NewUuidGenerator() UuidGenerator {
	return UuidGenerator{}
}

func (UuidGenerator) GenerateId() string {
	return uuid.NewString()
}

// Connection ids travel in URL queries when a client
// reconnects, so they are kept URL safe.
func NewConnectionId() string {
	return base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
}
