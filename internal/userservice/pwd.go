package userservice

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Hashes are stored as "pbkdf2:<digest>:<iterations>$<salt>$<hex key>",
// the layout werkzeug uses, so accounts created by earlier deployments of
// the site keep working.
const (
	DefaultIterations = 600000
	saltLength        = 16
	saltChars         = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var digests = map[string]struct {
	fn     func() hash.Hash
	keyLen int
}{
	"sha1":   {sha1.New, sha1.Size},
	"sha256": {sha256.New, sha256.Size},
	"sha512": {sha512.New, sha512.Size},
}

// HashPassword derives a salted PBKDF2-HMAC-SHA256 hash of raw.
func HashPassword(raw string, iterations int) (string, error) {
	if iterations < 1 {
		iterations = DefaultIterations
	}

	salt, err := genSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(raw), []byte(salt), iterations, sha256.Size, sha256.New)

	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(key)), nil
}

// VerifyPassword reports whether raw matches encoded. A malformed or
// unsupported hash never matches.
func VerifyPassword(raw, encoded string) bool {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]

	params := strings.Split(method, ":")
	if len(params) < 2 || len(params) > 3 || params[0] != "pbkdf2" {
		return false
	}

	d, ok := digests[params[1]]
	if !ok {
		return false
	}

	iterations := DefaultIterations
	if len(params) == 3 {
		n, err := strconv.Atoi(params[2])
		if err != nil || n < 1 {
			return false
		}
		iterations = n
	}

	key := pbkdf2.Key([]byte(raw), []byte(salt), iterations, d.keyLen, d.fn)
	got := hex.EncodeToString(key)

	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func genSalt(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))

	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(saltChars[idx.Int64()])
	}

	return sb.String(), nil
}

func (p *Password) set(pwd string, iterations int) error {
	hash, err := HashPassword(pwd, iterations)
	if err != nil {
		return err
	}

	p.Plain = pwd
	p.hash = hash

	return nil
}

// placeholderHash returns a well-formed hash with a fixed salt that no
// submitted password is expected to match.
func placeholderHash(iterations int) string {
	const salt = "7oXbWnQq4cJd2LzR"
	key := pbkdf2.Key([]byte("placeholder"), []byte(salt), iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iterations, salt, hex.EncodeToString(key))
}
