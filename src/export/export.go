// Package export writes search matches to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/facetrace/cli/src/model"
	"github.com/facetrace/cli/src/paths"
)

// Document is the JSON and YAML export layout
type Document struct {
	TotalMatches int           `json:"total_matches" yaml:"total_matches"`
	Matches      []model.Match `json:"matches" yaml:"matches"`
}

// CSVHeader is the column order of CSV exports
var CSVHeader = []string{"platform", "score", "username", "url"}

// Formats lists the supported file extensions
var Formats = []string{".json", ".csv", ".yaml", ".yml"}

// encoderFor returns the encoder for the extension of path
func encoderFor(path string) (func(io.Writer, []model.Match) error, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return JSON, nil
	case ".csv":
		return CSV, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return nil, &model.ValidationError{
		Field:   "--output",
		Message: fmt.Sprintf("has unsupported file format %q. Use %s", ext, strings.Join(Formats, ", ")),
	}
}

// Check validates the extension of path without writing anything
func Check(path string) error {
	_, err := encoderFor(path)
	return err
}

// Write exports matches to path. The format follows the file extension.
func Write(path string, matches []model.Match) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	if err := paths.EnsureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(f, matches); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func newDocument(matches []model.Match) Document {
	if matches == nil {
		matches = []model.Match{}
	}
	return Document{TotalMatches: len(matches), Matches: matches}
}

// JSON writes the indented JSON document
func JSON(w io.Writer, matches []model.Match) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(newDocument(matches))
}

// YAML writes the same document as JSON in YAML form
func YAML(w io.Writer, matches []model.Match) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(matches)); err != nil {
		return err
	}
	return enc.Close()
}

// CSV writes a header row followed by one row per match
func CSV(w io.Writer, matches []model.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, m := range matches {
		if err := cw.Write([]string{m.Platform, strconv.Itoa(m.Score), m.Username, m.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
