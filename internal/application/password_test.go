package application

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

var testArgon2idParams = Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := CreatePasswordHash("correct horse", testArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	if NeedsRehash(hash) {
		t.Fatalf("expected argon2id hash to be current")
	}
	if err := VerifyPassword(hash, "correct horse"); err != nil {
		t.Fatalf("expected password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreatePasswordHashRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := CreatePasswordHash("", testArgon2idParams); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	t.Parallel()

	raw, err := bcrypt.GenerateFromPassword([]byte("imported"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	hash := string(raw)
	if !NeedsRehash(hash) {
		t.Fatalf("expected bcrypt hash to need rehash")
	}
	if err := VerifyPassword(hash, "imported"); err != nil {
		t.Fatalf("expected bcrypt password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyPasswordPBKDF2(t *testing.T) {
	t.Parallel()

	derived := pbkdf2.Key([]byte("password"), []byte("salt"), 1000, 32, sha256.New)
	hash := "pbkdf2_sha256$1000$salt$" + base64.StdEncoding.EncodeToString(derived)

	if err := VerifyPassword(hash, "password"); err != nil {
		t.Fatalf("expected pbkdf2 password to verify, got %v", err)
	}
	if err := VerifyPassword(hash, "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{"", "plain", "$argon2id$v=19$broken", "pbkdf2_sha256$x$salt$hash", "pbkdf2_sha256$10$salt$!!"} {
		if err := VerifyPassword(hash, "secret"); !errors.Is(err, ErrInvalidPasswordHash) {
			t.Fatalf("VerifyPassword(%q) = %v, want ErrInvalidPasswordHash", hash, err)
		}
	}
}
