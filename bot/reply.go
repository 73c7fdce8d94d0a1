package bot

import (
	"errors"
	"os"
	"strings"
)

// SegmentType identifies the content of a reply segment
type SegmentType string

const (
	SegmentText  SegmentType = "text"
	SegmentImage SegmentType = "image"
)

// Segment is one piece of a chat reply. Image segments carry either the
// encoded bytes or a path on the local filesystem.
type Segment struct {
	Type SegmentType
	Text string
	Data []byte
	Path string
}

// Reply is the message the host should send back
type Reply struct {
	Segments []Segment
	// Forward asks the host to wrap the reply in a forwarded-message node
	Forward     bool
	ForwardName string

	files []string
}

func textReply(text string) *Reply {
	return &Reply{Segments: []Segment{{Type: SegmentText, Text: text}}}
}

// AddImageFile appends an image segment referencing a converted file.
// Cleanup removes the file.
func (r *Reply) AddImageFile(path string) {
	r.Segments = append(r.Segments, Segment{Type: SegmentImage, Path: path})
	r.files = append(r.files, path)
}

// Text concatenates the text segments
func (r *Reply) Text() string {
	var parts []string
	for _, s := range r.Segments {
		if s.Type == SegmentText {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// HasImage reports whether the reply carries an image
func (r *Reply) HasImage() bool {
	for _, s := range r.Segments {
		if s.Type == SegmentImage {
			return true
		}
	}
	return false
}

// Cleanup removes converted image files still referenced by the reply.
// Call it once the host has sent the message.
func (r *Reply) Cleanup() error {
	var errs []error
	for _, p := range r.files {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	r.files = nil
	return errors.Join(errs...)
}
