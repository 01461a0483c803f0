package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MasterKeyEnv overrides the key file when set.
const MasterKeyEnv = "QRSCAN_MASTER_KEY_HEX"

const storeKeyInfo = "scan-store"

// DeriveStoreKey derives the 32-byte history encryption key from the master key
// using HKDF-SHA256, so the master key itself never touches stored data.
func DeriveStoreKey(master []byte) ([]byte, error) {
	if len(master) != 32 {
		return nil, ErrInvalidKeyLength
	}
	h := hkdf.New(sha256.New, master, nil, []byte(storeKeyInfo))
	out := make([]byte, 32)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadMasterKey reads a hex master key from the environment or, failing
// that, from keyFile.
func ReadMasterKey(keyFile string) ([]byte, error) {
	h := os.Getenv(MasterKeyEnv)
	if h == "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("%s not set and %s not readable: %w", MasterKeyEnv, keyFile, err)
		}
		h = string(data)
	}
	b, err := hex.DecodeString(strings.TrimSpace(h))
	if err != nil {
		return nil, fmt.Errorf("master key hex decode error: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("master key length must be 32 bytes (hex 64 chars): %w", ErrInvalidKeyLength)
	}
	return b, nil
}

// GenerateMasterKey returns a fresh hex-encoded 32-byte key.
func GenerateMasterKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// WriteMasterKey writes a new key to path, refusing to overwrite unless force.
func WriteMasterKey(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}
	key, err := GenerateMasterKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	return os.WriteFile(path, []byte(key+"\n"), 0600)
}
