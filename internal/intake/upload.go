package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// Form field names used by the intake form.
const (
	FieldEmail    = "email"
	FieldConcerns = "concerns"
	FieldImages   = "images"
)

// multipartMemory is how much of a form is buffered in memory before
// spilling file parts to disk.
const multipartMemory = 32 << 20

// FromRequest reads a browser form post into a validated Submission. The
// body is capped at limits.MaxBodyBytes before anything is parsed.
func FromRequest(w http.ResponseWriter, r *http.Request, limits Limits) (*Submission, error) {
	limits = limits.withDefaults()
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBodyBytes())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			return nil, &ValidationError{Message: "request must be multipart/form-data"}
		case errors.As(err, &tooLarge):
			return nil, &ValidationError{Field: FieldImages, Message: MsgUploadTooLarge}
		}
		return nil, &ValidationError{Message: MsgUnreadableUpload}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[FieldImages]
	if len(files) > limits.MaxImages {
		return nil, tooManyImages(limits.MaxImages)
	}

	images := make([]Image, 0, len(files))
	for _, fh := range files {
		img, err := readPart(fh, limits.MaxImageBytes)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	sub := NewSubmission(r.FormValue(FieldEmail), r.FormValue(FieldConcerns), images)
	if err := sub.Validate(limits); err != nil {
		return nil, err
	}
	return sub, nil
}

func readPart(fh *multipart.FileHeader, maxBytes int64) (Image, error) {
	name := filepath.Base(fh.Filename)
	if fh.Size > maxBytes {
		return Image{}, &ImageError{Filename: name, Message: fmt.Sprintf("exceeds the %s limit", formatBytes(maxBytes))}
	}

	f, err := fh.Open()
	if err != nil {
		return Image{}, &ImageError{Filename: name, Message: "failed to open upload", Cause: err}
	}
	defer func() { _ = f.Close() }()

	return readImage(name, f, maxBytes)
}

// readImage reads at most maxBytes and sniffs the content type.
func readImage(name string, r io.Reader, maxBytes int64) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Image{}, &ImageError{Filename: name, Message: "failed to read", Cause: err}
	}
	if int64(len(data)) > maxBytes {
		return Image{}, &ImageError{Filename: name, Message: fmt.Sprintf("exceeds the %s limit", formatBytes(maxBytes))}
	}

	mt := mimetype.Detect(data)
	contentType, ok := imageType(mt)
	if !ok {
		return Image{}, &ImageError{Filename: name, Message: fmt.Sprintf("unsupported file type %s", mt.String())}
	}

	return Image{
		Filename:    name,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// imageType returns the closest image/* type in the detected hierarchy.
func imageType(mt *mimetype.MIME) (string, bool) {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return m.String(), true
		}
	}
	return "", false
}

// LoadImages reads photos from disk concurrently, keeping the given order.
func LoadImages(ctx context.Context, paths []string, limits Limits) ([]Image, error) {
	limits = limits.withDefaults()
	if len(paths) > limits.MaxImages {
		return nil, tooManyImages(limits.MaxImages)
	}

	images := make([]Image, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			img, err := loadImage(path, limits.MaxImageBytes)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func loadImage(path string, maxBytes int64) (Image, error) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return Image{}, &ImageError{Filename: name, Message: "file not found", Cause: err}
	}
	if info.Size() > maxBytes {
		return Image{}, &ImageError{Filename: name, Message: fmt.Sprintf("exceeds the %s limit", formatBytes(maxBytes))}
	}

	f, err := os.Open(path)
	if err != nil {
		return Image{}, &ImageError{Filename: name, Message: "failed to open", Cause: err}
	}
	defer func() { _ = f.Close() }()

	return readImage(name, f, maxBytes)
}
