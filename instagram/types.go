package instagram

// Media is one item of the account media listing as returned by the graph API.
// Only the fields requested in mediaFields are populated.
type Media struct {
	ID           string `json:"id"`
	Caption      string `json:"caption,omitempty"`
	MediaType    string `json:"media_type"` // "IMAGE", "VIDEO", "CAROUSEL_ALBUM"
	MediaURL     string `json:"media_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"` // videos only
	Permalink    string `json:"permalink"`
	Timestamp    string `json:"timestamp"`
}

// mediaPage is the first page of the listing; later pages are never requested
type mediaPage struct {
	Data []Media `json:"data"`
}

// Credentials identify the account whose media is listed
type Credentials struct {
	UserID      string
	AccessToken string
}

// Complete returns true if both values are set
func (c Credentials) Complete() bool {
	return c.UserID != "" && c.AccessToken != ""
}

// CredentialsFunc returns the credentials to use for one call
type CredentialsFunc func() Credentials
