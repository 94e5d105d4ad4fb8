package model

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// IssueType is the classification the model writes at the top of a draft.
type IssueType string

const (
	IssueTypeBug     IssueType = "Bug"
	IssueTypeFeature IssueType = "Feature"
)

// Draft is a generated issue. Title and Labels are derived from Content.
type Draft struct {
	Content       string   `json:"content"`
	Title         string   `json:"title"`
	Labels        []string `json:"labels"`
	SkippedFrames int      `json:"skipped_frames"`
}

// Image is a screenshot attached to the issue body. It is never sent to the model.
type Image struct {
	Name      string
	MediaType string // e.g. image/png
	Data      []byte
}

// DataURL renders the image inline as data:<type>;base64,<payload>.
func (i Image) DataURL() string {
	mediaType := i.MediaType
	if mediaType == "" {
		mediaType = "image/png"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ParseDataURL is the inverse of DataURL. Only base64 payloads are accepted.
func ParseDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("data URL has no payload")
	}
	mediaType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return Image{}, fmt.Errorf("data URL must be base64 encoded")
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return Image{}, fmt.Errorf("unsupported media type %q", mediaType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decoding data URL: %w", err)
	}
	return Image{MediaType: mediaType, Data: data}, nil
}
