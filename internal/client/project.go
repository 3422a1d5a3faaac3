package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/TTboyi/manga-factory/internal/apperrors"
	"github.com/TTboyi/manga-factory/internal/models"
)

// SaveProjectRequest is the step 4 export payload. ID zero creates a new
// project, non zero overwrites an existing one. Everything besides Name is
// optional: a project may be saved at any point of the flow.
type SaveProjectRequest struct {
	ID         int64              `json:"id,omitempty"`
	Name       string             `json:"name"`
	NovelText  string             `json:"novel_text,omitempty"`
	Scenes     []models.Scene     `json:"scenes,omitempty"`
	VisualSpec *models.VisualSpec `json:"visual_spec,omitempty"`
	Images     []string           `json:"images,omitempty"`
}

// SaveProject stores the storyboard under the current account and returns
// the project id.
func (c *Client) SaveProject(ctx context.Context, r SaveProjectRequest) (int64, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/project/save", r)
	if err != nil {
		return 0, err
	}

	var data struct {
		ProjectID int64 `json:"project_id"`
	}
	if _, err := c.doEnvelope(c.http, req, &data); err != nil {
		return 0, err
	}
	return data.ProjectID, nil
}

// GetProjectFull fetches one saved project with all of its content. Only
// the owner can read it, anything else is reported as not found.
func (c *Client) GetProjectFull(ctx context.Context, id int64) (models.Project, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, fmt.Sprintf("/project/get_full/%d", id), nil)
	if err != nil {
		return models.Project{}, err
	}

	var project models.Project
	if _, err := c.doEnvelope(c.http, req, &project); err != nil {
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return models.Project{}, fmt.Errorf("project %d: %w", id, apperrors.ErrProjectNotFound)
		}
		return models.Project{}, err
	}
	return project, nil
}

// ListMyProjects returns the gallery listing for the current account.
func (c *Client) ListMyProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/project/my_list", nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Projects []models.ProjectSummary `json:"projects"`
	}
	if _, err := c.doEnvelope(c.http, req, &data); err != nil {
		return nil, err
	}
	return data.Projects, nil
}
