package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMintAndValidateState(t *testing.T) {
	state, err := MintState(42)
	if err != nil {
		t.Fatalf("MintState: %v", err)
	}

	if err := ValidateState(state, 42); err != nil {
		t.Fatalf("ValidateState: %v", err)
	}
}

func TestValidateStateWrongUser(t *testing.T) {
	state, err := MintState(42)
	if err != nil {
		t.Fatalf("MintState: %v", err)
	}

	if err := ValidateState(state, 43); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestValidateStateExpired(t *testing.T) {
	mintedAt := time.Now().Add(-StateTTL - time.Minute).Unix()
	state := fmt.Sprintf("42-%d-nonce", mintedAt)

	if err := ValidateState(state, 42); !errors.Is(err, ErrExpiredState) {
		t.Fatalf("got %v, want ErrExpiredState", err)
	}
}

func TestValidateStateMalformed(t *testing.T) {
	cases := []string{
		"",
		"42",
		"42-123",
		"notanumber-123-nonce",
		"42-notanumber-nonce",
	}

	for _, state := range cases {
		if err := ValidateState(state, 42); !errors.Is(err, ErrInvalidState) {
			t.Errorf("state %q: got %v, want ErrInvalidState", state, err)
		}
	}
}
