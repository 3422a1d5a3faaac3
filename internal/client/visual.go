package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/TTboyi/manga-factory/internal/models"
)

// ImageFile is an optional reference image attached to visual analysis.
type ImageFile struct {
	Name   string
	Reader io.Reader
}

// AnalyzeVisualRequest carries the step 2 form: free text hints for the
// character and the art style, optionally the whole novel for context and
// reference images.
type AnalyzeVisualRequest struct {
	RoleText  string
	StyleText string
	NovelText string

	RoleImage  *ImageFile
	StyleImage *ImageFile
}

// AnalyzeVisual asks the backend to distill a visual spec from the user's
// hints. The route takes multipart form data because of the image uploads.
func (c *Client) AnalyzeVisual(ctx context.Context, r AnalyzeVisualRequest) (models.VisualSpec, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"role_text":  r.RoleText,
		"style_text": r.StyleText,
		"novel_text": r.NovelText,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return models.VisualSpec{}, fmt.Errorf("error building analyze form. Err: %w", err)
		}
	}

	images := map[string]*ImageFile{
		"role_image":  r.RoleImage,
		"style_image": r.StyleImage,
	}
	for field, img := range images {
		if img == nil {
			continue
		}
		part, err := form.CreateFormFile(field, img.Name)
		if err != nil {
			return models.VisualSpec{}, fmt.Errorf("error building analyze form. Err: %w", err)
		}
		if _, err := io.Copy(part, img.Reader); err != nil {
			return models.VisualSpec{}, fmt.Errorf("error reading image %q. Err: %w", img.Name, err)
		}
	}

	if err := form.Close(); err != nil {
		return models.VisualSpec{}, fmt.Errorf("error finishing analyze form. Err: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/visual/analyze", &buf, form.FormDataContentType())
	if err != nil {
		return models.VisualSpec{}, err
	}

	var spec models.VisualSpec
	if err := c.do(c.http, req, &spec); err != nil {
		return models.VisualSpec{}, err
	}
	return spec, nil
}
