package client

import (
	"context"
	"net/http"

	"github.com/TTboyi/manga-factory/internal/models"
)

// RecognizeScenes splits the novel text into storyboard shots. numShots 0
// lets the backend decide how many shots the plot needs.
func (c *Client) RecognizeScenes(ctx context.Context, novelText string, spec models.VisualSpec, numShots int) ([]models.Scene, error) {
	payload := map[string]any{
		"novel_text":  novelText,
		"visual_spec": spec,
	}
	if numShots > 0 {
		payload["num_shots"] = numShots
	}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/scene/recognize", payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Scenes []models.Scene `json:"scenes"`
	}
	if err := c.do(c.http, req, &result); err != nil {
		return nil, err
	}
	return result.Scenes, nil
}
