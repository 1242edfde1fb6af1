package model

import "fmt"

// Status is the outcome of processing a single reference.
type Status int

const (
	// StatusSaved means the package was written to disk.
	StatusSaved Status = iota

	// StatusNotFound means the server did not offer a file for the beatmapset
	// (removed, restricted or access denied).
	StatusNotFound

	// StatusUnresolved means the input line could not be turned into a
	// beatmapset ID.
	StatusUnresolved

	// StatusFailed means the request or the file write failed.
	StatusFailed
)

// String returns a short lowercase name for the status.
func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusNotFound:
		return "not found"
	case StatusUnresolved:
		return "unresolved"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome for one reference line or one beatmapset ID.
type Result struct {
	Status Status

	// Line is the raw input line. Only set for unresolved results.
	Line string

	// ID is the beatmapset ID. Empty for unresolved results.
	ID string

	// Path is where the package was written. Only set for saved results.
	Path string

	// Bytes is the number of bytes written. Only set for saved results.
	Bytes int64

	// Err holds the reason for unresolved and failed results.
	Err error
}

// SavedResult returns a Result for a package written to path.
func SavedResult(id, path string, bytes int64) Result {
	return Result{Status: StatusSaved, ID: id, Path: path, Bytes: bytes}
}

// NotFoundResult returns a Result for a beatmapset without a download.
func NotFoundResult(id string) Result {
	return Result{Status: StatusNotFound, ID: id}
}

// UnresolvedResult returns a Result for an input line that could not be resolved.
func UnresolvedResult(line string, err error) Result {
	return Result{Status: StatusUnresolved, Line: line, Err: err}
}

// FailedResult returns a Result for a download that errored.
func FailedResult(id string, err error) Result {
	return Result{Status: StatusFailed, ID: id, Err: err}
}

// String renders the result as a single status line.
func (r Result) String() string {
	switch r.Status {
	case StatusSaved:
		return fmt.Sprintf("%s: saved %s (%d bytes)", r.ID, r.Path, r.Bytes)
	case StatusNotFound:
		return fmt.Sprintf("%s: not found", r.ID)
	case StatusUnresolved:
		return fmt.Sprintf("unresolved reference %q: %v", r.Line, r.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", r.ID, r.Status, r.Err)
	}
}

// Report collects the results of a batch in processing order.
type Report struct {
	Results []Result
}

// Add appends a result to the report.
func (r *Report) Add(results ...Result) {
	r.Results = append(r.Results, results...)
}

// Count returns the number of results with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Saved returns the number of packages written to disk.
func (r *Report) Saved() int {
	return r.Count(StatusSaved)
}

// Skipped returns the number of results that did not produce a file.
func (r *Report) Skipped() int {
	return len(r.Results) - r.Saved()
}

// Bytes returns the total number of bytes written.
func (r *Report) Bytes() int64 {
	var total int64
	for _, res := range r.Results {
		total += res.Bytes
	}
	return total
}
