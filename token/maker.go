package token

import (
	"time"

	"github.com/google/uuid"
)

// Maker is the contract for anything that can create and verify tokens.
// Lets the token implementation be swapped (e.g. PASETO for something else)
// without touching the rest of the application.
type Maker interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
