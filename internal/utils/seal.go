package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrEmptyKey         = errors.New("credential key is empty")
	ErrInvalidSealedBox = errors.New("invalid sealed value")
)

// Sealer 用 XChaCha20-Poly1305 加密入库的 refresh token
// 用于：保存 / 读取用户的 Google Drive 授权
type Sealer struct {
	key [32]byte
}

// NewSealer 任意长度的口令经 SHA-256 派生成 32 字节密钥
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, ErrEmptyKey
	}
	return &Sealer{key: sha256.Sum256([]byte("hanna-ai:" + secret))}, nil
}

// Seal 输出 base64(nonce || ciphertext)，同一明文每次结果都不同
func (s *Sealer) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	box := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open 解密 Seal 的输出。密钥不对或数据被篡改时返回 ErrInvalidSealedBox
func (s *Sealer) Open(sealed string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidSealedBox
	}
	aead, err := chacha20poly1305.NewX(s.key[:])
	if err != nil {
		return "", err
	}
	if len(box) < aead.NonceSize() {
		return "", ErrInvalidSealedBox
	}
	nonce, ciphertext := box[:aead.NonceSize()], box[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidSealedBox
	}
	return string(plain), nil
}
