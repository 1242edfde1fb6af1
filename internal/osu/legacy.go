package osu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	httpclient "github.com/handiism/osu-beatmap-downloader/internal/http"
)

const legacyBeatmapsPath = "/api/get_beatmaps"

// LegacyAPI queries the v1 osu! API, which needs only a static key.
type LegacyAPI struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
}

// NewLegacyAPI creates a LegacyAPI client for the site at baseURL.
func NewLegacyAPI(client *httpclient.Client, baseURL, apiKey string) *LegacyAPI {
	return &LegacyAPI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// legacyBeatmap is one element of the get_beatmaps response. Only the field
// needed to find the owning set is decoded.
type legacyBeatmap struct {
	BeatmapsetID flexibleID `json:"beatmapset_id"`
}

// flexibleID accepts both "123" and 123; the v1 API encodes numbers as strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// BeatmapsetID returns the ID of the beatmapset that owns the given beatmap.
//
// Returns ErrLookupEmpty if the API answers with an empty list.
func (l *LegacyAPI) BeatmapsetID(ctx context.Context, beatmapID string) (string, error) {
	form := url.Values{
		"k": {l.apiKey},
		"b": {beatmapID},
	}

	resp, err := l.client.PostForm(ctx, l.baseURL+legacyBeatmapsPath, form, nil)
	if err != nil {
		return "", goerr.Wrap(err, "legacy lookup request failed", goerr.V("beatmap_id", beatmapID))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("legacy lookup returned an error status",
			goerr.V("beatmap_id", beatmapID), goerr.V("status", resp.StatusCode))
	}

	var beatmaps []legacyBeatmap
	if err := json.NewDecoder(resp.Body).Decode(&beatmaps); err != nil {
		return "", goerr.Wrap(err, "failed to decode legacy lookup response", goerr.V("beatmap_id", beatmapID))
	}

	if len(beatmaps) == 0 {
		return "", goerr.Wrap(ErrLookupEmpty, "no beatmap with this ID", goerr.V("beatmap_id", beatmapID))
	}

	id := string(beatmaps[0].BeatmapsetID)
	if id == "" {
		return "", goerr.New("legacy lookup result has no beatmapset_id", goerr.V("beatmap_id", beatmapID))
	}
	return id, nil
}
