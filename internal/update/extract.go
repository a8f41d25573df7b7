// SPDX-License-Identifier: MPL-2.0

package update

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxEntryBytes bounds a single decompressed archive entry to prevent
// decompression bombs.
const maxEntryBytes = 500 << 20

// extractOverwrite unpacks the tar.gz archive over targetDir, replacing
// files in place, and reports how many files were written. Release
// archives wrap their content in a top-level directory; that leading
// component is stripped so the content overlays the directory root.
func extractOverwrite(archivePath, targetDir string) (_ int, err error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() {
		// Gzip reader wraps the underlying file; close errors are not
		// actionable here since we only read from it.
		_ = gz.Close()
	}()

	count := 0
	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return count, fmt.Errorf("reading tar entry: %w", nextErr)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel := stripTopDir(hdr.Name)
		if rel == "" || rel == "." {
			continue
		}
		if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
			return count, fmt.Errorf("archive entry %q escapes the target directory", hdr.Name)
		}

		dest := filepath.Join(targetDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return count, fmt.Errorf("creating directory for %s: %w", rel, err)
		}
		if err := writeEntry(dest, tr, hdr.FileInfo().Mode().Perm()); err != nil {
			return count, fmt.Errorf("writing %s: %w", rel, err)
		}
		count++
	}
	return count, nil
}

func writeEntry(dest string, r io.Reader, perm os.FileMode) (err error) {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, io.LimitReader(r, maxEntryBytes))
	return err
}

// stripTopDir drops the leading path component of nested entries so an
// archive wrapped in a release directory overlays the target root.
// Root-level entries keep their name.
func stripTopDir(name string) string {
	name = path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
