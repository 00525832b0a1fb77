package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/sitechat"
)

// Ensure FileStore implements sitechat.DocumentStore at compile time.
var _ sitechat.DocumentStore = (*FileStore)(nil)

// FileStore implements sitechat.DocumentStore with atomic update semantics.
// Documents are saved to a temporary directory which replaces the output
// directory on Commit.
type FileStore struct {
	baseDir string
	name    string

	// Now returns the crawl date written to frontmatter.
	Now func() time.Time
}

// NewFileStore creates a new FileStore. Files are saved to
// baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
		Now:     time.Now,
	}
}

// SplitOutputDir splits an output directory path into the base directory and
// name expected by NewFileStore. The path must name a directory below its
// parent: ".", "..", "/" and paths that clean to them are rejected.
func SplitOutputDir(path string) (baseDir, name string, err error) {
	if strings.TrimSpace(path) == "" {
		return "", "", sitechat.Errorf(sitechat.EINVALID, "output directory required")
	}
	clean := filepath.Clean(path)
	baseDir, name = filepath.Dir(clean), filepath.Base(clean)
	if err := validateName(name); err != nil {
		return "", "", sitechat.Errorf(sitechat.EINVALID, "invalid output directory %q", path)
	}
	return baseDir, name, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return sitechat.Errorf(sitechat.EINVALID, "invalid output directory name %q", name)
	}
	return nil
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes doc to the temporary directory.
func (s *FileStore) Save(ctx context.Context, doc *sitechat.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(s.name); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	relPath, err := URLToPath(doc.Metadata.URL)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	content, err := FormatDocument(doc, s.Now())
	if err != nil {
		return fmt.Errorf("formatting %s: %w", doc.Metadata.URL, err)
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// Commit replaces the output directory with the saved documents.
func (s *FileStore) Commit() error {
	if err := validateName(s.name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the saved documents and leaves the output directory as is.
func (s *FileStore) Abort() error {
	if err := validateName(s.name); err != nil {
		return err
	}
	return os.RemoveAll(s.tempDir())
}
