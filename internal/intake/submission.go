// Package intake models the skin analysis request collected by the form:
// contact email, free-text concerns and a handful of photos.
package intake

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// DefaultMaxImages is the number of photos a submission may carry.
	DefaultMaxImages = 3
	// DefaultMaxImageBytes caps each photo at 10 MiB.
	DefaultMaxImageBytes = 10 << 20
)

// Limits bounds what a single submission may upload.
type Limits struct {
	MaxImages     int
	MaxImageBytes int64
}

// DefaultLimits returns the limits advertised on the form.
func DefaultLimits() Limits {
	return Limits{
		MaxImages:     DefaultMaxImages,
		MaxImageBytes: DefaultMaxImageBytes,
	}
}

// formOverhead leaves room for the text fields and multipart framing.
const formOverhead = 1 << 20

// MaxBodyBytes is the largest form body accepted under these limits.
func (l Limits) MaxBodyBytes() int64 {
	l = l.withDefaults()
	return int64(l.MaxImages)*l.MaxImageBytes + formOverhead
}

func (l Limits) withDefaults() Limits {
	if l.MaxImages <= 0 {
		l.MaxImages = DefaultMaxImages
	}
	if l.MaxImageBytes <= 0 {
		l.MaxImageBytes = DefaultMaxImageBytes
	}
	return l
}

// Image is one uploaded photo.
type Image struct {
	Filename    string `validate:"required"`
	ContentType string `validate:"required,startswith=image/"`
	Data        []byte `validate:"min=1"`
}

// Size returns the image size in bytes.
func (i Image) Size() int64 {
	return int64(len(i.Data))
}

// Submission is a validated request for recommendations.
type Submission struct {
	ID       uuid.UUID
	Email    string  `validate:"required,email"`
	Concerns string  `validate:"required"`
	Images   []Image `validate:"min=1,dive"`
}

// NewSubmission trims the text fields and assigns a fresh ID.
func NewSubmission(email, concerns string, images []Image) *Submission {
	return &Submission{
		ID:       uuid.New(),
		Email:    strings.TrimSpace(email),
		Concerns: strings.TrimSpace(concerns),
		Images:   images,
	}
}

var validate = validator.New()

// Validate checks required fields, photo count and photo sizes.
func (s *Submission) Validate(limits Limits) error {
	limits = limits.withDefaults()

	if len(s.Images) > limits.MaxImages {
		return tooManyImages(limits.MaxImages)
	}
	if err := validate.Struct(s); err != nil {
		return fromValidator(err)
	}
	for _, img := range s.Images {
		if img.Size() > limits.MaxImageBytes {
			return &ImageError{
				Filename: img.Filename,
				Message:  fmt.Sprintf("exceeds the %s limit", formatBytes(limits.MaxImageBytes)),
			}
		}
	}
	return nil
}

// Summary is the loggable view of a submission.
type Summary struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	ConcernsLen int    `json:"concerns_length"`
	ImageCount  int    `json:"image_count"`
	TotalBytes  int64  `json:"total_bytes"`
}

// Summary describes the submission without its photo contents.
func (s *Submission) Summary() Summary {
	var total int64
	for _, img := range s.Images {
		total += img.Size()
	}
	return Summary{
		ID:          s.ID.String(),
		Email:       s.Email,
		ConcernsLen: len(s.Concerns),
		ImageCount:  len(s.Images),
		TotalBytes:  total,
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit && n%(unit*unit) == 0:
		return fmt.Sprintf("%dMB", n/(unit*unit))
	case n >= unit && n%unit == 0:
		return fmt.Sprintf("%dKB", n/unit)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
