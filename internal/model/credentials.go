package model

// Credentials holds the login for the osu! website and the key for the
// legacy API.
//
// Secret fields are tagged for masq so they never appear in logs.
type Credentials struct {
	// Username is the osu! account name or e-mail address.
	Username string `json:"username"`

	// Password is the osu! account password.
	Password string `json:"password" masq:"secret"`

	// APIKey is the legacy (v1) API key used to map beatmap IDs to
	// beatmapset IDs.
	APIKey string `json:"api_key" masq:"secret"`
}

// HasLogin returns true if both login fields are set.
func (c *Credentials) HasLogin() bool {
	return c.Username != "" && c.Password != ""
}
