package models

// Scene is one storyboard shot recognized from the novel text.
type Scene struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
