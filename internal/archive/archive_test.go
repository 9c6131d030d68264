package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"hash/crc32"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zipFile struct {
	name string
	body string
}

func buildZip(t *testing.T, files ...zipFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"roadmap.pdf", true},
		{"docs/roadmap.docx", true},
		{"notes.txt", true},
		{"__MACOSX/._notes.txt", false},
		{"image.png", false},
		{"NOTES.TXT", false},
		{"folder/", false},
		{"nested/__MACOSX/notes.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.name))
		})
	}
}

func TestExtractSingle(t *testing.T) {
	t.Run("single txt entry", func(t *testing.T) {
		payload := buildZip(t, zipFile{"notes.txt", "abc"})

		e, err := ExtractSingle(payload, 0)

		require.NoError(t, err)
		assert.Equal(t, "notes.txt", e.Name)
		assert.Equal(t, "txt", e.Ext)
		assert.Equal(t, []byte("abc"), e.Data)
	})

	t.Run("extension comes from entry name", func(t *testing.T) {
		payload := buildZip(t,
			zipFile{"readme.md", "ignored"},
			zipFile{"prd/v1.2/roadmap.docx", "docx-bytes"},
		)

		e, err := ExtractSingle(payload, 1024)

		require.NoError(t, err)
		assert.Equal(t, "docx", e.Ext)
		assert.Equal(t, []byte("docx-bytes"), e.Data)
	})

	t.Run("macos metadata ignored", func(t *testing.T) {
		payload := buildZip(t,
			zipFile{"roadmap.pdf", "%PDF-1.7"},
			zipFile{"__MACOSX/._roadmap.pdf", "resource fork"},
			zipFile{"__MACOSX/other.txt", "junk"},
		)

		e, err := ExtractSingle(payload, 0)

		require.NoError(t, err)
		assert.Equal(t, "pdf", e.Ext)
		assert.Equal(t, []byte("%PDF-1.7"), e.Data)
	})

	t.Run("no eligible entries", func(t *testing.T) {
		payload := buildZip(t, zipFile{"image.png", "png"})

		_, err := ExtractSingle(payload, 0)

		assert.ErrorIs(t, err, ErrInvalidContents)
	})

	t.Run("empty archive", func(t *testing.T) {
		payload := buildZip(t)

		_, err := ExtractSingle(payload, 0)

		assert.ErrorIs(t, err, ErrInvalidContents)
	})

	t.Run("two eligible entries", func(t *testing.T) {
		payload := buildZip(t, zipFile{"a.txt", "a"}, zipFile{"b.pdf", "b"})

		_, err := ExtractSingle(payload, 0)

		assert.ErrorIs(t, err, ErrInvalidContents)
		assert.Contains(t, err.Error(), "found 2")
	})

	t.Run("corrupt archive", func(t *testing.T) {
		_, err := ExtractSingle([]byte("definitely not a zip"), 0)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidContents)
		assert.Contains(t, err.Error(), "open zip")
	})

	t.Run("declared size over cap", func(t *testing.T) {
		payload := buildZip(t, zipFile{"big.txt", strings.Repeat("x", 64)})

		_, err := ExtractSingle(payload, 32)

		assert.ErrorIs(t, err, ErrEntryTooLarge)
	})

	t.Run("exactly at cap", func(t *testing.T) {
		payload := buildZip(t, zipFile{"edge.txt", strings.Repeat("x", 32)})

		e, err := ExtractSingle(payload, 32)

		require.NoError(t, err)
		assert.Len(t, e.Data, 32)
	})

	t.Run("understated size still bounded", func(t *testing.T) {
		body := []byte(strings.Repeat("y", 4096))

		var compressed bytes.Buffer
		fw, err := flate.NewWriter(&compressed, flate.BestCompression)
		require.NoError(t, err)
		_, err = fw.Write(body)
		require.NoError(t, err)
		require.NoError(t, fw.Close())

		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.CreateRaw(&zip.FileHeader{
			Name:               "bomb.txt",
			Method:             zip.Deflate,
			CRC32:              crc32.ChecksumIEEE(body),
			CompressedSize64:   uint64(compressed.Len()),
			UncompressedSize64: 8,
		})
		require.NoError(t, err)
		_, err = w.Write(compressed.Bytes())
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = ExtractSingle(buf.Bytes(), 64)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidContents)
	})
}
