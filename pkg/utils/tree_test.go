package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTreeLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
}

func TestWriteTree_MirrorLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dumps")
	writeFiles(t, root,
		"example_test/index.html",
		"example_test/_b.html",
		"example_test/a.png",
		"other_test/index.html",
	)

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, root, testTreeLogger()))

	out := buf.String()
	assert.Contains(t, out, "Mirror of: "+root)
	assert.Contains(t, out, "dumps/\n")
	assert.Contains(t, out, "├── example_test\n")
	assert.Contains(t, out, "└── other_test\n")
	assert.Contains(t, out, "│   ├── _b.html\n")
	assert.Contains(t, out, "│   └── index.html\n")
	assert.Contains(t, out, "    └── index.html\n")
}

func TestWriteTree_DirectoriesFirst(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "z.txt", "a/inner.txt", "B.txt")

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, root, testTreeLogger()))

	out := buf.String()
	dirIdx := strings.Index(out, "a\n")
	bIdx := strings.Index(out, "B.txt")
	zIdx := strings.Index(out, "z.txt")
	require.True(t, dirIdx >= 0 && bIdx >= 0 && zIdx >= 0, out)
	assert.Less(t, dirIdx, bIdx)
	assert.Less(t, bIdx, zIdx)
}

func TestSaveTreeStructure(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "mirror")
	writeFiles(t, root, "host/index.html")
	outFile := filepath.Join(tmp, "tree.txt")

	require.NoError(t, SaveTreeStructure(root, outFile, testTreeLogger()))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "└── index.html")
}

func TestSaveTreeStructure_InsideMirrorDoesNotListItself(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "host/index.html")
	outFile := filepath.Join(root, "tree.txt")

	require.NoError(t, SaveTreeStructure(root, outFile, testTreeLogger()))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "tree.txt")
}

func TestSaveTreeStructure_NonExistentTarget(t *testing.T) {
	tmp := t.TempDir()
	err := SaveTreeStructure(filepath.Join(tmp, "missing"), filepath.Join(tmp, "tree.txt"), testTreeLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFilesystem))
}
