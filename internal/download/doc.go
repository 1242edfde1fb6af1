// Package download provides the orchestration logic for fetching a batch
// of beatmap sets from osu!.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Sign in once and keep the session for the whole batch
//  2. Resolve every input line to a beatmapset ID
//  3. Download each beatmapset, one at a time
//  4. Save each package under its sanitized server-suggested name
//
// # Basic Usage
//
//	manager, err := download.NewManager(settings, creds, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := manager.Run(ctx, lines, settings.DestinationDir(listPath))
//	if errors.Is(err, osu.ErrAuth) {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d saved, %d skipped\n", report.Saved(), report.Skipped())
//
// # Pacing
//
// Downloads never run in parallel. settings.RequestDelay seconds pass
// between the end of one download and the start of the next, whatever the
// outcome of the first.
//
// # Failures
//
// Only a failed sign in or a cancelled context stops a batch. Unresolvable
// lines, unavailable beatmap sets, request errors and write errors each
// become a model.Result and the batch moves on.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package download
