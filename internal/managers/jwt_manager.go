// Package managers holds the infrastructure collaborators: token codec,
// mail delivery and the database pool wrapper.
package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any session token that does not verify:
// bad signature, malformed payload or expired.
var ErrInvalidToken = errors.New("invalid token")

const resetSecretBytes = 20

// JWTMgr is the token codec contract. Session tokens are stateless signed
// credentials; reset secrets are random values of which only the sha256
// digest is ever persisted.
type JWTMgr interface {
	GenerateJWT(subject string, expiry time.Duration) (string, error)
	ValidateJWT(tokenString string) (string, error)
	GenerateResetSecret() (plaintext, hash string, err error)
	HashResetSecret(plaintext string) string
}

// JWTManager signs and validates session tokens with an Ed25519 key pair.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	now        func() time.Time
}

// NewJWTManager creates a JWTManager from an in-memory key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) *JWTManager {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		now:        time.Now,
	}
}

// NewJWTManagerFromFile loads the key pair from the given path, generating
// and persisting a fresh pair on first start.
func NewJWTManagerFromFile(path string) (*JWTManager, error) {
	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	return NewJWTManager(privateKey, publicKey), nil
}

// WithClock overrides the time source. Used by tests to step past expiry.
func (jm *JWTManager) WithClock(now func() time.Time) *JWTManager {
	jm.now = now
	return jm
}

// GenerateJWT signs a token binding the subject to an absolute expiry.
func (jm *JWTManager) GenerateJWT(subject string, expiry time.Duration) (string, error) {
	now := jm.now()
	claims := jwt.RegisteredClaims{
		Issuer:    "camphub",
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT verifies signature and expiry and returns the subject.
// Every failure mode collapses into ErrInvalidToken.
func (jm *JWTManager) ValidateJWT(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithTimeFunc(jm.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jm.publicKey, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// GenerateResetSecret produces a high-entropy reset secret. The plaintext
// goes out-of-band to the account owner; only the hash may be stored.
func (jm *JWTManager) GenerateResetSecret() (string, string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}

	plaintext := hex.EncodeToString(buf)
	return plaintext, jm.HashResetSecret(plaintext), nil
}

// HashResetSecret is the deterministic one-way transform used to find a
// persisted reset record from its plaintext presentation.
func (jm *JWTManager) HashResetSecret(plaintext string) string {
	digest := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(digest[:])
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	if err = saveKeyPair(privateKey, publicKey, path); err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := append(privateKey, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0600)
}

// loadKeyPair loads the key pair from the specified file. The file is the
// concatenation of the private and public keys.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	return keyPairBytes[:ed25519.PrivateKeySize], keyPairBytes[ed25519.PrivateKeySize:], nil
}
