// Package project writes compiled project files to disk and summarizes them.
package project

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/leapstack-labs/dashgen/pkg/codegen"
)

// ErrExists is returned when a file would be overwritten without force.
var ErrExists = errors.New("file already exists")

// Write creates every file under dir and returns the written paths in file
// order. Existing files are left untouched and reported with ErrExists
// unless force is set; the check covers all files before anything is written.
func Write(dir string, files []codegen.GeneratedFile, force bool) ([]string, error) {
	targets := make([]string, len(files))
	for i, f := range files {
		target, err := safeJoin(dir, f.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}

	if !force {
		for i, target := range targets {
			if _, err := os.Stat(target); err == nil {
				return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, files[i].Path)
			}
		}
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0750); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(targets[i], []byte(f.Content), 0600); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		written = append(written, targets[i])
	}
	return written, nil
}

// safeJoin joins a slash-separated relative path onto dir, rejecting paths
// that would escape it.
func safeJoin(dir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("invalid project path %q", rel)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid project path %q: escapes output directory", rel)
	}
	return filepath.Join(dir, clean), nil
}

// Tree renders the file layout as an indented tree headed by root.
func Tree(files []codegen.GeneratedFile, root string) (string, error) {
	top := gtree.NewRoot(root)
	for _, f := range files {
		node := top
		for _, segment := range strings.Split(f.Path, "/") {
			// Add returns the existing child when the text repeats
			node = node.Add(segment)
		}
	}

	var buf bytes.Buffer
	if err := gtree.OutputFromRoot(&buf, top); err != nil {
		return "", fmt.Errorf("failed to render file tree: %w", err)
	}
	return buf.String(), nil
}

// Digest returns a stable hex sha256 over file paths and contents in order.
func Digest(files []codegen.GeneratedFile) string {
	h := sha256.New()
	for _, f := range files {
		// length prefixes keep path/content boundaries unambiguous
		_, _ = fmt.Fprintf(h, "%d:%s%d:%s", len(f.Path), f.Path, len(f.Content), f.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Size returns the total content size in bytes.
func Size(files []codegen.GeneratedFile) int {
	n := 0
	for _, f := range files {
		n += len(f.Content)
	}
	return n
}
