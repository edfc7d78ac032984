package hashing

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authcore/internal/common"
	"golang.org/x/crypto/argon2"
)

const argon2idPrefix = "$argon2id$"

var ErrUnknownFormat = errors.New("unknown password hash format")

// Argon2id hashes with argon2.IDKey and encodes the result in the PHC
// string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
type Argon2id struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

func NewArgon2id() *Argon2id {
	return &Argon2id{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
}

func (a *Argon2id) Hash(password []byte) (string, error) {
	salt := common.GenerateRandByteArray(a.SaltLen)
	key := argon2.IDKey(password, salt, a.Time, a.Memory, a.Threads, a.KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version, a.Memory, a.Time, a.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a *Argon2id) Verify(password []byte, encoded string) (bool, error) {
	return verifyAny(password, encoded)
}

func verifyArgon2id(password []byte, encoded string) (bool, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, ErrUnknownFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: argon2 version %d", ErrUnknownFormat, version)
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
	}

	got := argon2.IDKey(password, salt, time, memory, threads, uint32(len(want)))
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
