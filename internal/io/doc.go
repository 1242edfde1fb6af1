// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Reading reference list files line by line
//   - Destination directory naming and creation
//
// # Filename Sanitization
//
// Use SanitizeFileName to replace invalid characters in a server-suggested
// file name:
//
//	safe := ioutils.SanitizeFileName("Artist/Title.osz") // Returns "Artist_Title.osz"
//
// SanitizeFileNameStrict additionally replaces hyphens.
//
// # List Files
//
//	lines, err := ioutils.ReadLines("maps.txt")
//	dir := ioutils.DestinationDir("maps.txt") // "maps"
//	err = ioutils.EnsureDir(dir)
package ioutils
