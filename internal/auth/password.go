package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for credential hashing (spec §4.C). These are baked
// into every newly issued hash; verify reads its own parameters back out of
// the PHC string, so changing these only affects future hashes.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// HashPassword derives an Argon2id hash encoded as a standard PHC string:
// $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		b64Encode(salt), b64Encode(hash)), nil
}

// VerifyPassword parses the PHC string and recomputes the hash with the
// embedded parameters and salt. Any malformed input — wrong algorithm tag,
// unparseable parameters, malformed base64 — is treated as a non-match
// rather than an error (spec §4.C: "rejects any malformed input as a
// miss").
func VerifyPassword(password, phc string) bool {
	params, salt, hash, ok := parsePHC(phc)
	if !ok {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// parsePHC decodes a "$argon2id$v=19$m=...,t=...,p=...$salt$hash" string.
// Any deviation from that exact shape is reported as !ok.
func parsePHC(phc string) (argon2Params, []byte, []byte, bool) {
	parts := strings.Split(phc, "$")
	// parts[0] is empty (leading $); expect 6 fields total.
	if len(parts) != 6 || parts[1] != "argon2id" {
		return argon2Params{}, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return argon2Params{}, nil, nil, false
	}

	var params argon2Params
	var mem, t, p uint32
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &t, &p); err != nil || n != 3 {
		return argon2Params{}, nil, nil, false
	}
	params.memory = mem
	params.time = t
	params.threads = uint8(p)

	salt, ok := b64Decode(parts[4])
	if !ok {
		return argon2Params{}, nil, nil, false
	}
	hash, ok := b64Decode(parts[5])
	if !ok {
		return argon2Params{}, nil, nil, false
	}

	return params, salt, hash, true
}
