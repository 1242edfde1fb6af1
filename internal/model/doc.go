// Package model defines the core data structures used throughout
// the osu-beatmap-downloader application.
//
// # Credentials
//
// Credentials hold the website login and the legacy API key:
//
//	creds := &model.Credentials{Username: "peppy", Password: "...", APIKey: "..."}
//
// # Results
//
// Every processed reference produces exactly one Result:
//
//	model.SavedResult(id, path, bytes) // package written to disk
//	model.NotFoundResult(id)           // server offered no file
//	model.UnresolvedResult(line, err)  // input line matched no known format
//	model.FailedResult(id, err)        // transport or filesystem error
//
// A Report collects the results of one batch in processing order.
package model
