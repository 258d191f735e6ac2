package model

import "fmt"

// Score bounds accepted by the service
const (
	MinScoreFloor   = 70
	MinScoreCeiling = 100
)

// Credential is the bearer token that proves an authenticated session
type Credential struct {
	Token string
	Email string
}

// Valid reports whether the credential carries a token
func (c Credential) Valid() bool {
	return c.Token != ""
}

// ImageSource is the image a search runs against. It has exactly two
// implementations: FileImage and URLImage.
type ImageSource interface {
	// Describe returns a short human readable label
	Describe() string
	isImageSource()
}

// FileImage is an image uploaded as raw bytes
type FileImage struct {
	Name string
	Data []byte
}

func (f FileImage) Describe() string { return f.Name }
func (FileImage) isImageSource() {}

// URLImage is an image the service fetches by reference
type URLImage struct {
	URL string
}

func (u URLImage) Describe() string { return u.URL }
func (URLImage) isImageSource() {}

// SearchRequest is built once per invocation and never mutated
type SearchRequest struct {
	image    ImageSource
	minScore int
	platform string
}

// NewSearchRequest validates and builds a search request
func NewSearchRequest(image ImageSource, minScore int, platform string) (SearchRequest, error) {
	switch img := image.(type) {
	case nil:
		return SearchRequest{}, &ValidationError{Field: "image", Message: "is required"}
	case FileImage:
		if len(img.Data) == 0 {
			return SearchRequest{}, &ValidationError{Field: "image", Message: "is empty"}
		}
	case URLImage:
		if img.URL == "" {
			return SearchRequest{}, &ValidationError{Field: "image", Message: "URL is empty"}
		}
	}
	if err := ValidateMinScore(minScore); err != nil {
		return SearchRequest{}, err
	}
	return SearchRequest{image: image, minScore: minScore, platform: platform}, nil
}

// ValidateMinScore checks the minimum similarity threshold
func ValidateMinScore(minScore int) error {
	if minScore < MinScoreFloor || minScore > MinScoreCeiling {
		return &ValidationError{
			Field:   "--min-score",
			Message: fmt.Sprintf("must be between %d and %d", MinScoreFloor, MinScoreCeiling),
		}
	}
	return nil
}

// Image returns the image source
func (r SearchRequest) Image() ImageSource { return r.image }

// MinScore returns the minimum similarity threshold
func (r SearchRequest) MinScore() int { return r.minScore }

// Platform returns the optional platform filter
func (r SearchRequest) Platform() string { return r.platform }

// Match correlates a platform profile with the submitted face
type Match struct {
	Platform string `json:"platform" yaml:"platform"`
	Score    int    `json:"score" yaml:"score"`
	URL      string `json:"url" yaml:"url"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}
