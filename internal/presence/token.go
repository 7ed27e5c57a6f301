package presence

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sp4rkv/vscord-custom-image/internal/crypto"
)

// tokenHeader identifies the encrypted token format on disk. Files starting
// with this header are machine-locked encrypted blobs.
const tokenHeader = "VSCORDTOKEN1\n"

const tokenFileName = "token"

// LoadToken reads and decrypts the stored gateway token from dir.
// Returns "" with no error when no token has been saved yet.
func LoadToken(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	if !bytes.HasPrefix(data, []byte(tokenHeader)) {
		return "", fmt.Errorf("unrecognized token file format")
	}

	encoded := strings.TrimSpace(string(data[len(tokenHeader):]))
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("token decode failed: %w", err)
	}

	key, err := crypto.DeriveStorageKey()
	if err != nil {
		return "", fmt.Errorf("cannot derive key: %w", err)
	}

	plaintext, err := crypto.DecryptBytes(key, ciphertext)
	if err != nil {
		return "", fmt.Errorf("token decryption failed (wrong machine?): %w", err)
	}

	return string(plaintext), nil
}

// SaveToken encrypts and stores the gateway token as an opaque
// machine-locked blob in dir.
func SaveToken(dir, token string) error {
	key, err := crypto.DeriveStorageKey()
	if err != nil {
		return fmt.Errorf("cannot derive key: %w", err)
	}

	ciphertext, err := crypto.EncryptBytes(key, []byte(token))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(tokenHeader)
	buf.WriteString(base64.StdEncoding.EncodeToString(ciphertext))
	buf.WriteByte('\n')

	return os.WriteFile(filepath.Join(dir, tokenFileName), buf.Bytes(), 0o600)
}
