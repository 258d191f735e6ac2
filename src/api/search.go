package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/facetrace/cli/src/model"
)

// StartResponse acknowledges a submitted search
type StartResponse struct {
	SearchID string `json:"search_id"`
	Status   string `json:"status,omitempty"`
}

// StatusResponse is one snapshot of a search job
type StatusResponse struct {
	Status           string        `json:"status"`
	Progress         int           `json:"progress"`
	Found            int           `json:"found"`
	Results          []model.Match `json:"results,omitempty"`
	RemainingCredits *int          `json:"remaining_credits,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// JobStatus returns the parsed status
func (r *StatusResponse) JobStatus() model.JobStatus {
	return model.ParseJobStatus(r.Status)
}

// StartSearch submits a search and returns the job identifier. Rejections
// are reported as *model.SubmitError.
func (c *Client) StartSearch(ctx context.Context, req model.SearchRequest) (string, error) {
	body, contentType, err := encodeSearch(req)
	if err != nil {
		return "", err
	}

	var result StartResponse
	err = c.do(ctx, request{
		op:          "search submission",
		method:      http.MethodPost,
		path:        "/search/face/start",
		body:        body,
		contentType: contentType,
		auth:        true,
		timeout:     c.SubmitTimeout,
	}, &result)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return "", &model.SubmitError{Err: apiErr}
		}
		return "", err
	}
	if result.SearchID == "" {
		return "", &model.SubmitError{Err: errors.New("server did not return a search id")}
	}
	return result.SearchID, nil
}

// SearchStatus fetches the current state of a search job
func (c *Client) SearchStatus(ctx context.Context, jobID string) (*StatusResponse, error) {
	var result StatusResponse
	err := c.do(ctx, request{
		op:     "search status",
		method: http.MethodGet,
		path:   "/search/status/" + url.PathEscape(jobID),
		auth:   true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// encodeSearch builds a multipart upload for file images and a form post
// for URL references
func encodeSearch(req model.SearchRequest) (*bytes.Buffer, string, error) {
	minScore := strconv.Itoa(req.MinScore())

	switch img := req.Image().(type) {
	case model.FileImage:
		buf := &bytes.Buffer{}
		w := multipart.NewWriter(buf)

		part, err := w.CreateFormFile("image", filepath.Base(img.Name))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image: %w", err)
		}
		if err := w.WriteField("min_score", minScore); err != nil {
			return nil, "", err
		}
		if req.Platform() != "" {
			if err := w.WriteField("platform_filter", req.Platform()); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
		}
		return buf, w.FormDataContentType(), nil

	case model.URLImage:
		form := url.Values{}
		form.Set("image_url", img.URL)
		form.Set("min_score", minScore)
		if req.Platform() != "" {
			form.Set("platform_filter", req.Platform())
		}
		return bytes.NewBufferString(form.Encode()), "application/x-www-form-urlencoded", nil

	default:
		return nil, "", &model.ValidationError{Field: "image", Message: "is required"}
	}
}
