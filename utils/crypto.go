package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrDecrypt = errors.New("cannot decrypt secret")

func secretKey(key string) (*[32]byte, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	var k [32]byte
	copy(k[:], key)
	return &k, nil
}

// EncryptSecret mã hoá chuỗi bằng secretbox, kết quả là base64(nonce || box).
func EncryptSecret(key, plaintext string) (string, error) {
	k, err := secretKey(key)
	if err != nil {
		return "", err
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, k)
	return base64.StdEncoding.EncodeToString(out), nil
}

func DecryptSecret(key, encoded string) (string, error) {
	k, err := secretKey(key)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, k)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
