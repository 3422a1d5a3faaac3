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

// NovelResult is what the text pipeline produces: the cleaned up novel text
// and a first pass of recognized scenes.
type NovelResult struct {
	NovelText string         `json:"novel_text"`
	Scenes    []models.Scene `json:"scenes"`
}

// GenerateNovel turns raw user text into polished novel text plus an
// initial scene split.
func (c *Client) GenerateNovel(ctx context.Context, text string) (NovelResult, error) {
	payload := map[string]string{"text": text}

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/text/generate_novel", payload)
	if err != nil {
		return NovelResult{}, err
	}

	var result NovelResult
	if err := c.do(c.http, req, &result); err != nil {
		return NovelResult{}, err
	}
	return result, nil
}

// UploadNovel sends a document file (txt/doc/docx); the backend extracts the
// text and runs the same pipeline as GenerateNovel.
func (c *Client) UploadNovel(ctx context.Context, filename string, file io.Reader) (NovelResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return NovelResult{}, fmt.Errorf("error building upload form. Err: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return NovelResult{}, fmt.Errorf("error reading %q. Err: %w", filename, err)
	}
	if err := form.Close(); err != nil {
		return NovelResult{}, fmt.Errorf("error finishing upload form. Err: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/text/upload", &buf, form.FormDataContentType())
	if err != nil {
		return NovelResult{}, err
	}

	var result NovelResult
	if err := c.do(c.http, req, &result); err != nil {
		return NovelResult{}, err
	}
	return result, nil
}
