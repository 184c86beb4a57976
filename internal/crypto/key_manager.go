// Package crypto encrypts patient message and advice text at rest. Every
// user gets a data key, itself encrypted with the service master key; the
// clear data key only ever lives in memory.
package crypto

import (
	"encoding/base64"
	"errors"
	"os"
	"sync"
)

var (
	ErrMasterKeyNotSet      = errors.New("master key not set in environment")
	ErrInvalidMasterKey     = errors.New("invalid master key: must be base64 of 32 bytes")
	ErrDataKeyDecryptFailed = errors.New("failed to decrypt data key")
)

// KeyManager decrypts and caches per-user data keys.
type KeyManager struct {
	masterKey []byte
	dataKeys  map[int64][]byte // user_id -> clear data key
	mu        sync.RWMutex
}

// NewKeyManager reads the base64 master key from MASTER_KEY.
func NewKeyManager() (*KeyManager, error) {
	encoded := os.Getenv("MASTER_KEY")
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	masterKey, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(masterKey) != 32 {
		return nil, ErrInvalidMasterKey
	}

	return &KeyManager{
		masterKey: masterKey,
		dataKeys:  make(map[int64][]byte),
	}, nil
}

// GenerateAndEncryptDataKey creates a fresh data key for a new user and
// returns it encrypted with the master key, ready to store on the user row.
func (km *KeyManager) GenerateAndEncryptDataKey() (string, error) {
	dataKey, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return Encrypt(base64.StdEncoding.EncodeToString(dataKey), km.masterKey)
}

func (km *KeyManager) loadDataKey(userID int64, encryptedDK string) ([]byte, error) {
	km.mu.RLock()
	dataKey, ok := km.dataKeys[userID]
	km.mu.RUnlock()
	if ok {
		return dataKey, nil
	}

	clearBase64, err := Decrypt(encryptedDK, km.masterKey)
	if err != nil {
		return nil, ErrDataKeyDecryptFailed
	}
	dataKey, err = base64.StdEncoding.DecodeString(clearBase64)
	if err != nil {
		return nil, ErrDataKeyDecryptFailed
	}

	km.mu.Lock()
	km.dataKeys[userID] = dataKey
	km.mu.Unlock()
	return dataKey, nil
}

// EncryptContent encrypts message or advice text with the user's data key.
func (km *KeyManager) EncryptContent(plaintext string, userID int64, encryptedDK string) (string, error) {
	dataKey, err := km.loadDataKey(userID, encryptedDK)
	if err != nil {
		return "", err
	}
	return Encrypt(plaintext, dataKey)
}

// DecryptContent decrypts message or advice text with the user's data key.
func (km *KeyManager) DecryptContent(ciphertext string, userID int64, encryptedDK string) (string, error) {
	dataKey, err := km.loadDataKey(userID, encryptedDK)
	if err != nil {
		return "", err
	}
	return Decrypt(ciphertext, dataKey)
}

// ForgetDataKey drops a user's clear data key from memory (logout).
func (km *KeyManager) ForgetDataKey(userID int64) {
	km.mu.Lock()
	delete(km.dataKeys, userID)
	km.mu.Unlock()
}
