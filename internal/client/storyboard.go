package client

import (
	"context"
	"net/http"

	"github.com/TTboyi/manga-factory/internal/models"
)

// StoryboardResult pairs generated image URLs with the prompts used for
// them. Prompts may be absent on older backends.
type StoryboardResult struct {
	Images  []string `json:"images"`
	Prompts []string `json:"prompts,omitempty"`
}

// GenerateStoryboard renders one image per scene in the given visual style.
// This is the slowest call of the whole flow.
func (c *Client) GenerateStoryboard(ctx context.Context, novelText string, scenes []models.Scene, spec models.VisualSpec) (StoryboardResult, error) {
	payload := map[string]any{
		"novel_text":  novelText,
		"scenes":      scenes,
		"visual_spec": spec,
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/image/generate_storyboard", payload)
	if err != nil {
		return StoryboardResult{}, err
	}

	var result StoryboardResult
	if err := c.do(c.http, req, &result); err != nil {
		return StoryboardResult{}, err
	}
	return result, nil
}
