package application

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// CreatePasswordHash derives an argon2id hash in PHC string format.
func CreatePasswordHash(password string, params Argon2idParams) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}

	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

// VerifyPassword checks password against an argon2id, bcrypt or
// pbkdf2_sha256 hash. A mismatch returns ErrInvalidCredentials.
func VerifyPassword(hashedPassword, password string) error {
	switch {
	case strings.HasPrefix(hashedPassword, "$argon2id$"):
		return verifyArgon2id(hashedPassword, password)
	case strings.HasPrefix(hashedPassword, "$2a$"), strings.HasPrefix(hashedPassword, "$2b$"), strings.HasPrefix(hashedPassword, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPasswordHash, err)
		}
		return nil
	case strings.HasPrefix(hashedPassword, "pbkdf2_sha256$"):
		return verifyPBKDF2(hashedPassword, password)
	}
	return ErrInvalidPasswordHash
}

// NeedsRehash reports whether a stored hash uses a scheme other than argon2id.
func NeedsRehash(hashedPassword string) bool {
	return !strings.HasPrefix(hashedPassword, "$argon2id$")
}

func verifyArgon2id(hashedPassword, password string) error {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 {
		return ErrInvalidPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ErrInvalidPasswordHash
	}
	if version != argon2.Version {
		return ErrIncompatiblePasswordVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return ErrInvalidPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidPasswordHash
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrInvalidPasswordHash
	}
	params.KeyLength = uint32(len(decodedHash))

	comparisonHash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}
	return ErrInvalidCredentials
}

// verifyPBKDF2 checks hashes in the pbkdf2_sha256$iterations$salt$hash layout
// used by Django user tables.
func verifyPBKDF2(hashedPassword, password string) error {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 4 {
		return ErrInvalidPasswordHash
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return ErrInvalidPasswordHash
	}

	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return ErrInvalidPasswordHash
	}

	derived := pbkdf2.Key([]byte(password), []byte(parts[2]), iterations, len(expected), sha256.New)
	if subtle.ConstantTimeCompare(expected, derived) == 1 {
		return nil
	}
	return ErrInvalidCredentials
}
