package gen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/tools/imports"
)

// ManifestFile is the name of the manifest written in the target directory.
const ManifestFile = ".strata-manifest"

// Writer emits artifacts. Implementations must be safe for concurrent use;
// a second write to the same path overwrites the first.
type Writer interface {
	// Write emits the artifact. It reports false if the artifact was
	// skipped, either because it is an existing stub or because the
	// content is unchanged.
	Write(ctx context.Context, a *Artifact) (bool, error)
}

// FSWriter writes artifacts below a root directory. Go sources are
// formatted with goimports before they are written.
type FSWriter struct {
	root     string
	mu       sync.Mutex
	manifest map[string]string
	dirty    bool
}

// NewFSWriter creates a writer for the root directory, loading the
// manifest of a previous run if present.
func NewFSWriter(root string) (*FSWriter, error) {
	w := &FSWriter{root: root, manifest: make(map[string]string)}
	buf, err := os.ReadFile(filepath.Join(root, ManifestFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read manifest: %w", err)
	default:
		if err := msgpack.Unmarshal(buf, &w.manifest); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
	}
	return w, nil
}

// Root returns the root directory of the writer.
func (w *FSWriter) Root() string { return w.root }

// Write implements Writer.
func (w *FSWriter) Write(ctx context.Context, a *Artifact) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fullPath := filepath.Join(w.root, filepath.FromSlash(a.Path))
	exists := fileExists(fullPath)
	if !a.Overwrite && exists {
		return false, nil
	}
	content := a.Content
	if strings.HasSuffix(a.Path, ".go") {
		formatted, err := imports.Process(fullPath, content, nil)
		if err != nil {
			// Write unformatted file for debugging (errors intentionally ignored as we're already in error state)
			debugPath := fullPath + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, content, 0o644)
			return false, fmt.Errorf("format %s: %w (unformatted written to %s)", a.Path, err, debugPath)
		}
		content = formatted
	}
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])
	w.mu.Lock()
	recorded := w.manifest[a.Path]
	w.mu.Unlock()
	// The file on disk may have been edited since it was recorded.
	if exists && recorded == digest && fileDigest(fullPath) == digest {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", a.Path, err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", a.Path, err)
	}
	w.mu.Lock()
	w.manifest[a.Path] = digest
	w.dirty = true
	w.mu.Unlock()
	return true, nil
}

// Close saves the manifest.
func (w *FSWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty {
		return nil
	}
	buf, err := msgpack.Marshal(w.manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(w.root, ManifestFile), buf, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	w.dirty = false
	return nil
}

// Manifest returns a copy of the recorded path digests.
func (w *FSWriter) Manifest() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.manifest)
}

// fileDigest returns the hex sha256 of the file, or "" if it cannot be read.
func fileDigest(path string) string {
	buf, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MemoryWriter collects artifacts in memory.
type MemoryWriter struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
}

// NewMemoryWriter returns an empty memory writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{artifacts: make(map[string]*Artifact)}
}

// Write implements Writer.
func (w *MemoryWriter) Write(ctx context.Context, a *Artifact) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.artifacts[a.Path] = a
	return true, nil
}

// Get returns the artifact written at the path.
func (w *MemoryWriter) Get(path string) (*Artifact, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.artifacts[path]
	return a, ok
}

// Paths returns the sorted paths of the written artifacts.
func (w *MemoryWriter) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.artifacts))
}

// Len returns the number of written artifacts.
func (w *MemoryWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.artifacts)
}
