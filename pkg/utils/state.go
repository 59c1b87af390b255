package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StateTTL bounds how long an OAuth state parameter stays accepted.
const StateTTL = 10 * time.Minute

var (
	ErrInvalidState = errors.New("invalid state")
	ErrExpiredState = errors.New("expired state")
)

// MintState builds the OAuth state parameter as {userId}-{timestamp}-{random}.
func MintState(userID int64) (string, error) {
	nonce, err := gonanoid.New(12)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d-%s", userID, time.Now().Unix(), nonce), nil
}

// ValidateState checks the leading segment of state against the session user
// and rejects states older than StateTTL. Callers must run this before any
// network call.
func ValidateState(state string, userID int64) error {
	parts := strings.SplitN(state, "-", 3)
	if len(parts) != 3 {
		return ErrInvalidState
	}

	stateUserID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || stateUserID != userID {
		return ErrInvalidState
	}

	mintedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ErrInvalidState
	}
	if time.Since(time.Unix(mintedAt, 0)) > StateTTL {
		return ErrExpiredState
	}

	return nil
}
