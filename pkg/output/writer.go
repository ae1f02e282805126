package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// Writer performs file writes confined to a root directory.
type Writer struct {
	root string
}

// NewWriter returns a Writer scoped to root.
func NewWriter(root string) *Writer {
	return &Writer{root: filepath.Clean(root)}
}

// Root returns the directory every write is confined to.
func (w *Writer) Root() string { return w.root }

// Write stores data at target, creating parent directories (0755) as needed.
// target must resolve inside the writer's root. The data goes to a temp file in the same
// directory which is then renamed over target, so concurrent writers of one path never interleave.
func (w *Writer) Write(target string, data []byte) error {
	clean := filepath.Clean(target)
	rel, err := filepath.Rel(w.root, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: '%s' is outside output root '%s'", utils.ErrFilesystem, target, w.root)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0755); err != nil {
		return fmt.Errorf("%w: creating directory for '%s': %w", utils.ErrFilesystem, clean, err)
	}
	if err := writeFileAtomic(clean, data, 0644); err != nil {
		return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, clean, err)
	}
	return nil
}

func writeFileAtomic(target string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
