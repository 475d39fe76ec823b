package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendToFileCreatesParents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "traces", "run_0.jsonl")
	require.NoError(t, AppendToFile(p, "a"))
	require.NoError(t, AppendToFile(p, "b", "c"))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", string(bs))
}

func TestWriteToFileOverwrites(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteToFile(p, "first"))
	require.NoError(t, WriteToFile(p, "x", "y"))

	bs, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "x\ny\n", string(bs))
}
