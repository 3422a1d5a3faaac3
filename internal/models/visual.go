package models

// VisualSpec describes character appearance and art style. Produced by the
// backend visual analysis and passed back unmodified to the scene and
// storyboard endpoints.
type VisualSpec struct {
	RoleFeatures    string   `json:"role_features"`
	ArtStyle        string   `json:"art_style"`
	ReferenceImages []string `json:"reference_images,omitempty"`
	PromptTags      []string `json:"prompt_tags,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}
