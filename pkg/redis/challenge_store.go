package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrChallengeNotFound is returned when no live challenge exists for an address.
var ErrChallengeNotFound = errors.New("challenge not found or expired")

const challengeKeyPrefix = "auth:challenge:"

var (
	setChallengeValue    = Set
	getDelChallengeValue = GetDel
	randomRead           = rand.Read
)

// ChallengeStore keeps one-time login challenges per principal address
type ChallengeStore struct {
	ttl time.Duration
}

// NewChallengeStore creates a challenge store whose challenges live for ttl
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{ttl: ttl}
}

// Issue stores and returns a fresh challenge message for address
func (s *ChallengeStore) Issue(ctx context.Context, address string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := randomRead(nonce); err != nil {
		return "", fmt.Errorf("failed to generate challenge: %w", err)
	}

	message := fmt.Sprintf("wrapchain login\naddress: %s\nnonce: %s", address, hex.EncodeToString(nonce))
	if err := setChallengeValue(ctx, challengeKeyPrefix+strings.ToLower(address), message, s.ttl); err != nil {
		return "", err
	}
	return message, nil
}

// Consume returns the challenge for address and deletes it so it cannot be replayed
func (s *ChallengeStore) Consume(ctx context.Context, address string) (string, error) {
	message, err := getDelChallengeValue(ctx, challengeKeyPrefix+strings.ToLower(address))
	if err != nil {
		if IsNil(err) {
			return "", ErrChallengeNotFound
		}
		return "", err
	}
	return message, nil
}
