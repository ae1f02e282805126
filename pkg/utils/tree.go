package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// SaveTreeStructure writes a text tree of mirrorDir (the dumped site) to outputFilePath.
// The tree is rendered before the file is created, so a tree file placed inside
// mirrorDir does not list itself.
func SaveTreeStructure(mirrorDir, outputFilePath string, log *logrus.Entry) error {
	info, err := os.Stat(mirrorDir)
	if err != nil {
		return fmt.Errorf("%w: mirror directory '%s': %w", ErrFilesystem, mirrorDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: '%s' is not a directory", ErrFilesystem, mirrorDir)
	}

	var buf bytes.Buffer
	if err := WriteTree(&buf, mirrorDir, log); err != nil {
		return err
	}
	if err := os.WriteFile(outputFilePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: writing tree file '%s': %w", ErrFilesystem, outputFilePath, err)
	}
	log.Debugf("Tree structure for %s written to %s", mirrorDir, outputFilePath)
	return nil
}

// WriteTree renders mirrorDir as a tree: a header, the root name, then entries
// with directories first and names compared case-insensitively.
func WriteTree(w io.Writer, mirrorDir string, log *logrus.Entry) error {
	header := fmt.Sprintf("Mirror of: %s", mirrorDir)
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n%s/\n", header, strings.Repeat("=", len(header)), filepath.Base(mirrorDir)); err != nil {
		return err
	}
	return writeTreeLevel(w, mirrorDir, "", log)
}

func writeTreeLevel(w io.Writer, dirPath, indent string, log *logrus.Entry) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		log.Warnf("Failed to read directory '%s': %v", dirPath, err)
		return fmt.Errorf("%w: reading directory '%s': %w", ErrFilesystem, dirPath, err)
	}

	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	for i, entry := range entries {
		last := i == len(entries)-1
		connector, nextIndent := entryPrefix, indent+verticalLine
		if last {
			connector, nextIndent = lastEntryPrefix, indent+indentPrefix
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, connector, entry.Name()); err != nil {
			return err
		}
		if entry.IsDir() {
			if err := writeTreeLevel(w, filepath.Join(dirPath, entry.Name()), nextIndent, log); err != nil {
				return err
			}
		}
	}
	return nil
}
