package models

// Identity is the display identity of an agent version (name, avatar,
// rating), looked up in batches and memoized for the life of the process.
type Identity struct {
	VersionID   string `json:"version_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Rating      int    `json:"rating,omitempty"`
}
