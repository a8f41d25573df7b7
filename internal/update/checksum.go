// SPDX-License-Identifier: MPL-2.0

package update

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrChecksumMismatch indicates a downloaded asset does not match the
// digest the manifest published for it.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// verifyChecksum streams the file through SHA256 and compares the
// digest against the expected hex string, case-insensitively.
func verifyChecksum(path, expected string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, expected) {
		return fmt.Errorf("%w for %s: expected %s, got %s",
			ErrChecksumMismatch, filepath.Base(path), strings.ToLower(expected), got)
	}
	return nil
}
