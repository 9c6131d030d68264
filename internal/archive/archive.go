// Package archive pulls the single document out of an uploaded zip.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// macOSMetadataPrefix marks resource-fork entries added by Finder's "Compress".
const macOSMetadataPrefix = "__MACOSX/"

var eligibleSuffixes = []string{".pdf", ".docx", ".txt"}

var (
	// ErrInvalidContents means the archive holds zero or several eligible documents.
	ErrInvalidContents = errors.New("zip must contain exactly one valid PRD file")
	// ErrEntryTooLarge means the eligible entry expands past the configured cap.
	ErrEntryTooLarge = errors.New("zip entry exceeds extracted size limit")
)

// Entry is the document extracted from an archive.
type Entry struct {
	Name string
	Ext  string
	Data []byte
}

// Eligible reports whether an entry name can be accepted as the archived document.
func Eligible(name string) bool {
	if strings.HasPrefix(name, macOSMetadataPrefix) {
		return false
	}
	for _, s := range eligibleSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ExtractSingle parses payload as a zip archive and returns its only eligible entry.
// The entry is read through a limit of maxEntrySize bytes regardless of what the
// central directory declares; maxEntrySize <= 0 disables the cap.
func ExtractSingle(payload []byte, maxEntrySize int64) (Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return Entry{}, fmt.Errorf("open zip: %w", err)
	}

	var found []*zip.File
	for _, f := range zr.File {
		if Eligible(f.Name) {
			found = append(found, f)
		}
	}
	if len(found) != 1 {
		return Entry{}, fmt.Errorf("%w (found %d)", ErrInvalidContents, len(found))
	}

	f := found[0]
	if maxEntrySize > 0 && f.UncompressedSize64 > uint64(maxEntrySize) {
		return Entry{}, fmt.Errorf("%s: %w", f.Name, ErrEntryTooLarge)
	}

	data, err := readEntry(f, maxEntrySize)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Name: f.Name,
		Ext:  f.Name[strings.LastIndex(f.Name, ".")+1:],
		Data: data,
	}, nil
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		// One extra byte distinguishes "exactly at the limit" from "over it".
		r = io.LimitReader(rc, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrEntryTooLarge)
	}
	return data, nil
}
