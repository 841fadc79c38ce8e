package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steganography-codecs/stego"
)

func TestHideAndDig(t *testing.T) {
	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "secret.txt")
	outPath := filepath.Join(dir, "tool.bin")
	require.NoError(t, os.WriteFile(payloadPath, []byte("cli secret"), 0o644))

	c := stego.NewReverseAppendix()
	carrier := []byte("some executable")
	require.NoError(t, hide(c, carrier, payloadPath, outPath))

	encoded, err := os.ReadFile(outPath)
	require.NoError(t, err)

	extracted := filepath.Join(dir, "extracted.txt")
	restored := filepath.Join(dir, "restored.bin")
	require.NoError(t, dig(c, encoded, extracted, restored))

	got, err := os.ReadFile(extracted)
	require.NoError(t, err)
	assert.Equal(t, []byte("cli secret"), got)

	got, err = os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, carrier, got)
}

func TestMissingPaths(t *testing.T) {
	c := stego.NewReverseAppendix()
	assert.Error(t, hide(c, nil, "", ""))
	assert.Error(t, dig(c, nil, "", ""))
}
