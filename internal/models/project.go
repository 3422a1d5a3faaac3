package models

import "encoding/json"

// Project is the full saved storyboard project as returned by
// /project/get_full. Fields besides name and id are whatever the user had
// produced when saving, so all of them may be absent.
type Project struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	NovelText  string          `json:"novel_text,omitempty"`
	Scenes     []Scene         `json:"scenes,omitempty"`
	VisualSpec *VisualSpec     `json:"visual_spec,omitempty"`
	Images     []string        `json:"images,omitempty"`
	Extra      json.RawMessage `json:"-"`
}

// ProjectSummary is one row of the "my projects" gallery listing.
type ProjectSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
