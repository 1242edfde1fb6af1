// Package http provides an HTTP client configured for osu! website requests.
//
// The Client in this package handles:
//   - A cookie jar so a login session carries across requests
//   - User-Agent headers
//   - Form posts with extra headers
//   - Timeout handling
//
// # Basic Usage
//
//	client, err := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	// Fetch a page and read a cookie it set
//	_, err = client.Get(ctx, "https://osu.ppy.sh/home")
//	token := client.Cookie("https://osu.ppy.sh", "XSRF-TOKEN")
//
//	// Post a form
//	resp, err := client.PostForm(ctx, loginURL, form, header)
//
// # Saving Responses
//
// SaveBody streams a response body to disk and reports progress:
//
//	n, err := http.SaveBody(resp.Body, "/path/to/file.osz", resp.ContentLength, nil)
package http
