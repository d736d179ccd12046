/*
Package archive packages release binaries into per-platform archives such as
enforcer@1.3.0-linux.tgz.
*/
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/tmpl"
)

// Creator creates archives
type Creator struct {
	cfg     config.Archive
	distDir string
}

// NewCreator creates a new archive creator
func NewCreator(cfg config.Archive, distDir string) *Creator {
	return &Creator{cfg: cfg, distDir: distDir}
}

// Extension returns the file extension for format
func Extension(format string) string {
	switch format {
	case "zip":
		return ".zip"
	case "tar.gz":
		return ".tar.gz"
	default:
		return ".tgz"
	}
}

// Create archives the binary artifact. tmplCtx must carry the version and target.
func (c *Creator) Create(bin artifact.Artifact, tmplCtx *tmpl.Context) (*artifact.Artifact, error) {
	format := c.cfg.Format
	switch format {
	case "", "tgz", "tar.gz", "zip":
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", format)
	}

	name, err := tmplCtx.Apply(c.cfg.NameTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to apply name template: %w", err)
	}

	if err := os.MkdirAll(c.distDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dist directory: %w", err)
	}

	archivePath := filepath.Join(c.distDir, name+Extension(format))
	log.Info("Creating archive", "path", archivePath, "format", format)

	if err := write(archivePath, format, bin.Path); err != nil {
		_ = os.Remove(archivePath)
		return nil, fmt.Errorf("failed to create archive %s: %w", archivePath, err)
	}

	return &artifact.Artifact{
		Name:   filepath.Base(archivePath),
		Path:   archivePath,
		Type:   artifact.Archive,
		Target: bin.Target,
		OS:     bin.OS,
		Arch:   bin.Arch,
	}, nil
}

// write stores src at the root of a new archive at path
func write(path, format, src string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if format == "zip" {
		return writeZip(out, in, info)
	}
	return writeTarGz(out, in, info)
}

func writeTarGz(w io.Writer, src io.Reader, info os.FileInfo) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if _, err := io.Copy(tw, src); err != nil {
		return err
	}
	return errors.Join(tw.Close(), gw.Close())
}

func writeZip(w io.Writer, src io.Reader, info os.FileInfo) error {
	zw := zip.NewWriter(w)

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Method = zip.Deflate
	entry, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, src); err != nil {
		return err
	}
	return zw.Close()
}

// Install copies the binary into dir, expanding a leading "~"
func Install(bin artifact.Artifact, dir string) (string, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create install directory: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(bin.Path))
	if err := copyFile(bin.Path, dst); err != nil {
		return "", fmt.Errorf("failed to install %s: %w", bin.Name, err)
	}
	log.Info("Installed binary", "path", dst)
	return dst, nil
}

func expandHome(dir string) (string, error) {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
}

// copyFile copies src to dst keeping the permission bits
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
