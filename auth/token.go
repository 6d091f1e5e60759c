package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// TokenBytes is the number of random bytes in a session token.
const TokenBytes = 32

// HMAC hashes session tokens with a secret key, so that a leaked session
// store does not leak usable tokens.
type HMAC struct {
	key []byte
}

// NewHMAC creates and returns a new HMAC object.
func NewHMAC(key string) HMAC {
	return HMAC{
		key: []byte(key),
	}
}

// Hash hashes an input string using HMAC-SHA256 with the secret key.
// A new hash.Hash is created on every call, so Hash is safe for concurrent use.
func (h HMAC) Hash(input string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(input))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// NewToken returns a fresh random session token.
func NewToken() (string, error) {
	return bytesToString(TokenBytes)
}

// bytes generates n random bytes or returns an error. It uses the
// crypto/rand package, so it can be used for things like session tokens.
func bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// nBytes returns the number of bytes used in a base64 URL encoded string.
func nBytes(base64String string) (int, error) {
	b, err := base64.URLEncoding.DecodeString(base64String)
	if err != nil {
		return -1, err
	}
	return len(b), nil
}

// bytesToString generates a byte slice of size nBytes and then returns a
// string that is the base64 URL encoded version of that byte slice.
func bytesToString(nBytes int) (string, error) {
	b, err := bytes(nBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// wellFormed reports whether token could have been issued by NewToken.
func wellFormed(token string) bool {
	n, err := nBytes(token)
	return err == nil && n == TokenBytes
}
