/*
Package checksum writes the checksum file published next to the release
archives, in the "<hex>  <file>" format read by sha256sum -c.
*/
package checksum

import (
	"cmp"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/blake2b"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/tmpl"
)

// Algorithm names a supported hash
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	SHA512  Algorithm = "sha512"
	BLAKE2b Algorithm = "blake2b"
)

func (a Algorithm) hash() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case BLAKE2b:
		return blake2b.New256(nil)
	}
	return nil, fmt.Errorf("unsupported checksum algorithm: %s", a)
}

// Sum returns the hex digest of the file at path
func Sum(path string, algo Algorithm) (string, error) {
	h, err := algo.hash()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether the file at path has the expected digest
func Verify(path, expected string, algo Algorithm) (bool, error) {
	sum, err := Sum(path, algo)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(sum, expected), nil
}

// Generator checksums every archive registered with a Manager
type Generator struct {
	cfg       config.Checksum
	dist      string
	artifacts *artifact.Manager
	names     *tmpl.Context
}

// NewGenerator creates a generator writing into dist. names renders the file
// name template; nil uses the template text as is.
func NewGenerator(cfg config.Checksum, dist string, artifacts *artifact.Manager, names *tmpl.Context) *Generator {
	return &Generator{cfg: cfg, dist: dist, artifacts: artifacts, names: names}
}

type line struct {
	sum  string
	file string
}

// Run writes the checksum file and registers it as an artifact
func (g *Generator) Run() error {
	if g.cfg.Disable {
		log.Debug("Checksums disabled")
		return nil
	}

	archives := g.artifacts.Filter(artifact.ByType(artifact.Archive))
	if len(archives) == 0 {
		log.Warn("No archives to checksum")
		return nil
	}

	algo := Algorithm(g.cfg.Algorithm)
	lines := make([]line, 0, len(archives))
	for _, a := range archives {
		sum, err := Sum(a.Path, algo)
		if err != nil {
			return fmt.Errorf("failed to checksum %s: %w", a.Name, err)
		}
		lines = append(lines, line{sum: sum, file: a.Name})
	}
	slices.SortFunc(lines, func(a, b line) int { return cmp.Compare(a.file, b.file) })

	name, err := g.fileName()
	if err != nil {
		return err
	}
	path := filepath.Join(g.dist, name)

	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s  %s\n", l.sum, l.file)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write checksum file: %w", err)
	}

	g.artifacts.Add(artifact.Artifact{Name: name, Path: path, Type: artifact.Checksum})
	log.Info("Wrote checksums", "file", name, "archives", len(lines), "algorithm", cmp.Or(algo, SHA256))
	return nil
}

func (g *Generator) fileName() (string, error) {
	name := cmp.Or(g.cfg.NameTemplate, "checksums.txt")
	if g.names == nil {
		return name, nil
	}
	rendered, err := g.names.Apply(name)
	if err != nil {
		return "", fmt.Errorf("failed to apply checksum name template: %w", err)
	}
	return rendered, nil
}
