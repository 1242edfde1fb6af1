// Package osu implements the parts of the osu! website protocol needed to
// download beatmap sets: logging in, resolving beatmap references and
// requesting packages.
//
// # Authentication
//
// The website has no documented login API. Authenticator replays what a
// browser does: fetch the landing page to obtain the XSRF-TOKEN cookie,
// post the login form echoing that token, then probe an account page to
// confirm the session is really signed in.
//
//	auth := osu.NewAuthenticator(client, "https://osu.ppy.sh", logger)
//	session, err := auth.Authenticate(ctx, creds)
//	if errors.Is(err, osu.ErrAuth) {
//	    // abort the batch
//	}
//
// # Resolving References
//
// Resolver turns one line of input into a beatmapset ID. Supported formats,
// tried in this order:
//
//	https://osu.ppy.sh/beatmapsets/12345#osu/67890  -> 12345
//	https://osu.ppy.sh/s/12345                      -> 12345
//	https://osu.ppy.sh/b/67890                      -> legacy API lookup
//
// ModeBeatmapsetID and ModeBeatmapID read bare numbers instead, the latter
// through the legacy API. Blank lines never resolve.
//
// # Downloading
//
// Session.OpenBeatmapset requests the package; the file name offered by the
// server is read with FileNameFromDisposition.
package osu
