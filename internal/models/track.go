package models

// Track is a catalog search result. Identity is ID.
type Track struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	ImageURL    string  `json:"imageUrl"`
	PreviewURL  *string `json:"previewUrl"`
	ExternalURL string  `json:"externalUrl"`
	URI         string  `json:"uri"`
}
