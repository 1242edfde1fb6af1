// Package ioutils provides file system utilities for the osu-beatmap-downloader.
//
// This package contains functions for:
//   - Filename sanitization
//   - Reading reference list files
//   - Destination directory handling
package ioutils

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// reservedChars are the characters that Windows, macOS or Linux refuse in a
// file name (or treat as path separators).
const reservedChars = `\/:*?"<>|`

// SanitizeFileName replaces characters that are invalid in file names with
// an underscore.
//
// Unlike a general purpose cleaner, it never removes or collapses anything:
// the result has the same length as the input and every other byte keeps its
// value and position, even in names that are not valid UTF-8. Applying it
// twice yields the same result as applying it once.
//
// The following characters are replaced: \ / : * ? " < > |
//
// Example:
//
//	SanitizeFileName("Artist/Title.osz")  // Returns "Artist_Title.osz"
//	SanitizeFileName("a: b?.osz")         // Returns "a_ b_.osz"
func SanitizeFileName(name string) string {
	return replaceBytes(name, reservedChars)
}

// SanitizeFileNameStrict behaves like SanitizeFileName but also replaces
// hyphens, matching the naming used by older versions of the downloader.
//
// Example:
//
//	SanitizeFileNameStrict("Artist - Title.osz") // Returns "Artist _ Title.osz"
func SanitizeFileNameStrict(name string) string {
	return replaceBytes(name, reservedChars+"-")
}

// replaceBytes works on bytes: every character in set is ASCII and never
// appears inside a multi-byte UTF-8 sequence.
func replaceBytes(name, set string) string {
	b := []byte(name)
	for i, c := range b {
		if strings.IndexByte(set, c) >= 0 {
			b[i] = '_'
		}
	}
	return string(b)
}

// ReadLines reads a reference list file and returns one entry per line.
//
// Line terminators ("\n" and "\r\n") are trimmed. Empty lines are kept so
// callers can decide how to report them; a trailing newline at the end of the
// file does not produce an extra entry.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// DestinationDir returns the directory downloads from a list file are saved
// to: the list file path without its extension.
//
// Example:
//
//	DestinationDir("lists/ranked.txt") // Returns "lists/ranked"
func DestinationDir(listPath string) string {
	return strings.TrimSuffix(listPath, filepath.Ext(listPath))
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
