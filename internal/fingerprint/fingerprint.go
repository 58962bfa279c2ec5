// Package fingerprint computes the deterministic SHA-256 digest over an
// extension's declared input files, per spec §3 and §4.6. The digest's
// leading characters form the tag of a container image reference (see
// ImageTag); the cache root is not derived from it.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/util"
)

// Compute returns the hex-encoded SHA-256 over the canonical byte stream
// for paths, resolved relative to repoRoot: for each path in sorted,
// deduplicated order, UTF-8 path bytes, a NUL, the file's own SHA-256, and
// a NUL.
func Compute(repoRoot string, paths []string) (string, error) {
	sorted := dedupeSorted(paths)

	h := sha256.New()
	for _, p := range sorted {
		full := filepath.Join(repoRoot, p)
		fileHash, err := hashFile(full)
		if err != nil {
			return "", dferrors.MissingFingerprintInput(p)
		}
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(fileHash)
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

func dedupeSorted(paths []string) []string {
	out := util.UnionStrings(paths, nil)
	sort.Strings(out)
	return out
}

// ImageTag builds a container image reference from a base image name and a
// fingerprint digest, the digest forming the tag's trailing component per
// spec §4.6.
func ImageTag(baseName, digest string) string {
	short := digest
	if len(short) > 12 {
		short = short[:12]
	}
	return baseName + ":" + short
}
