package osu

import (
	"context"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Reference formats, in the order they are tried.
var (
	beatmapsetPattern       = regexp.MustCompile(`/beatmapsets/(\d+)(?:#\w+/)?(\d*)`)
	legacyBeatmapsetPattern = regexp.MustCompile(`/s/(\d+)`)
	legacyBeatmapPattern    = regexp.MustCompile(`/b/(\d+)`)
)

// BeatmapsetLookup maps a beatmap (difficulty) ID to its beatmapset ID.
// LegacyAPI implements it.
type BeatmapsetLookup interface {
	BeatmapsetID(ctx context.Context, beatmapID string) (string, error)
}

// Mode selects how input lines are read.
type Mode int

const (
	// ModeURL matches each line against the known website link formats.
	ModeURL Mode = iota

	// ModeBeatmapsetID takes each line as a beatmapset ID.
	ModeBeatmapsetID

	// ModeBeatmapID takes each line as a beatmap (difficulty) ID and looks up
	// the set it belongs to.
	ModeBeatmapID
)

// String returns the name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeBeatmapsetID:
		return "beatmapset-id"
	case ModeBeatmapID:
		return "beatmap-id"
	default:
		return "url"
	}
}

// Resolver turns reference lines into beatmapset IDs.
type Resolver struct {
	lookup BeatmapsetLookup
	mode   Mode
}

// NewResolver creates a Resolver. lookup may be nil; beatmap references
// then fail with ErrUnresolved.
func NewResolver(lookup BeatmapsetLookup, mode Mode) *Resolver {
	return &Resolver{lookup: lookup, mode: mode}
}

// Resolve returns the beatmapset ID a line refers to.
//
// Blank lines return ErrUnresolved in every mode. Only beatmap references
// (/b/ links and lines in ModeBeatmapID) cause a network call; beatmaps
// unknown to the API return ErrLookupEmpty.
func (r *Resolver) Resolve(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", goerr.Wrap(ErrUnresolved, "empty line")
	}

	switch r.mode {
	case ModeBeatmapsetID:
		return line, nil
	case ModeBeatmapID:
		return r.lookupBeatmap(ctx, line)
	}

	if m := beatmapsetPattern.FindStringSubmatch(line); m != nil {
		return m[1], nil
	}

	if m := legacyBeatmapsetPattern.FindStringSubmatch(line); m != nil {
		return m[1], nil
	}

	if m := legacyBeatmapPattern.FindStringSubmatch(line); m != nil {
		return r.lookupBeatmap(ctx, m[1])
	}

	return "", goerr.Wrap(ErrUnresolved, "no known reference format matched", goerr.V("line", line))
}

func (r *Resolver) lookupBeatmap(ctx context.Context, beatmapID string) (string, error) {
	if r.lookup == nil {
		return "", goerr.Wrap(ErrUnresolved, "beatmap references need the legacy API", goerr.V("beatmap_id", beatmapID))
	}
	return r.lookup.BeatmapsetID(ctx, beatmapID)
}
