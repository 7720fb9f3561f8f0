// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// TimestampFormat is the layout embedded in generated archive names.
const TimestampFormat = "20060102_150405"

// MaxFileSize is the maximum size of a single extracted file (100MB).
// This prevents decompression bombs.
const MaxFileSize = 100 * 1024 * 1024

// BuildResult describes an archive produced by Build.
type BuildResult struct {
	// Path is the absolute or relative path of the written archive.
	Path string

	// Filename is the base name, <name>_<timestamp>.tar.gz.
	Filename string

	// Timestamp is the stamp embedded in the filename.
	Timestamp string

	// Digest is the sha256 digest of the compressed archive bytes.
	Digest digest.Digest
}

// Build creates <outputDir>/<name>_<timestamp>.tar.gz from the contents of
// sourceDir. Entries are rooted under the base name of sourceDir so the
// archive unpacks into a single directory. The output directory is created
// if it does not exist.
//
// Symlinks inside the source tree are rejected rather than followed: an
// archive must not capture content from outside the tree it claims to
// package.
func Build(sourceDir, outputDir, name string, now time.Time) (*BuildResult, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	stamp := now.Format(TimestampFormat)
	filename := fmt.Sprintf("%s_%s.tar.gz", name, stamp)
	outPath := filepath.Join(outputDir, filename)

	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304 -- path built from caller inputs
	if err != nil {
		return nil, fmt.Errorf("creating archive %s: %w", outPath, err)
	}

	digester := digest.SHA256.Digester()
	gw := gzip.NewWriter(io.MultiWriter(f, digester.Hash()))
	tw := tar.NewWriter(gw)

	root := filepath.Base(filepath.Clean(sourceDir))
	walkErr := filepath.WalkDir(sourceDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, p)
		if err != nil {
			return err
		}
		arcname := root
		if rel != "." {
			arcname = path.Join(root, filepath.ToSlash(rel))
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return fmt.Errorf("source contains symlink: %s", p)
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return fmt.Errorf("building tar header for %s: %w", p, err)
		}
		hdr.Name = arcname
		hdr.Format = tar.FormatPAX
		if d.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", arcname, err)
		}
		if d.IsDir() {
			return nil
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("source contains non-regular file: %s", p)
		}

		src, err := os.Open(p) // #nosec G304 -- path produced by WalkDir over sourceDir
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, src)
		_ = src.Close()
		if err != nil {
			return fmt.Errorf("writing tar content for %s: %w", arcname, err)
		}
		return nil
	})
	if walkErr != nil {
		_ = tw.Close()
		_ = gw.Close()
		_ = f.Close()
		_ = os.Remove(outPath)
		return nil, walkErr
	}

	if err := tw.Close(); err != nil {
		_ = gw.Close()
		_ = f.Close()
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}
	if err := gw.Close(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing archive %s: %w", outPath, err)
	}

	return &BuildResult{
		Path:      outPath,
		Filename:  filename,
		Timestamp: stamp,
		Digest:    digester.Digest(),
	}, nil
}

// Extract unpacks a .tar.gz archive into destDir. It rejects symlinks,
// hardlinks, device entries, paths containing traversal sequences, and
// files larger than MaxFileSize.
func Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath) // #nosec G304 -- archive path supplied by caller
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		if err := validateEntryPath(hdr.Name); err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if hdr.Size > MaxFileSize {
				return fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, int64(MaxFileSize))
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return fmt.Errorf("creating directory for %s: %w", hdr.Name, err)
			}
			if err := writeEntry(target, tr, hdr); err != nil {
				return err
			}
		case tar.TypeSymlink, tar.TypeLink:
			return fmt.Errorf("archive contains disallowed link type: %s", hdr.Name)
		default:
			return fmt.Errorf("archive contains disallowed entry type %d: %s", hdr.Typeflag, hdr.Name)
		}
	}
	return nil
}

func writeEntry(target string, tr *tar.Reader, hdr *tar.Header) error {
	mode := fs.FileMode(hdr.Mode) & fs.ModePerm //nolint:gosec // masked to permission bits
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) // #nosec G304 -- target validated against traversal
	if err != nil {
		return fmt.Errorf("creating file %s: %w", target, err)
	}

	// Limit enforced during the copy, not just against the declared size.
	n, err := io.Copy(out, io.LimitReader(tr, MaxFileSize+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing file %s: %w", target, err)
	}
	if n > MaxFileSize {
		return fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, int64(MaxFileSize))
	}
	return nil
}

// validateEntryPath checks that a tar entry path is safe to join under a
// destination directory.
func validateEntryPath(p string) error {
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("path traversal detected in archive: %s", p)
	}
	if path.IsAbs(cleaned) {
		return fmt.Errorf("absolute path not allowed in archive: %s", p)
	}
	return nil
}

// FlattenTopDir moves the contents of <dir>/<child> up into dir and removes
// the now-empty child directory. It is a no-op if the child does not exist
// or is not a directory.
func FlattenTopDir(dir, child string) error {
	inner := filepath.Join(dir, child)
	info, err := os.Stat(inner)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspecting %s: %w", inner, err)
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(inner)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inner, err)
	}
	for _, e := range entries {
		from := filepath.Join(inner, e.Name())
		to := filepath.Join(dir, e.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("moving %s: %w", e.Name(), err)
		}
	}
	if err := os.Remove(inner); err != nil {
		return fmt.Errorf("removing %s: %w", inner, err)
	}
	return nil
}
