package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages shown to the person filling in the form.
const (
	MsgMissingInformation = "Please fill in all fields and upload at least one image."
	MsgTooManyImages      = "Please select up to 3 images only."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgNotAnImage         = "Only image files (PNG, JPG, ...) can be uploaded."
	MsgUnreadableUpload   = "The upload could not be read. Please try again."
	MsgUploadTooLarge     = "The upload is too large. Please choose smaller images."
)

// ValidationError describes a rejected submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ImageError is returned when an uploaded file cannot be used.
type ImageError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *ImageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("image %s: %s: %v", e.Filename, e.Message, e.Cause)
	}
	return fmt.Sprintf("image %s: %s", e.Filename, e.Message)
}

func (e *ImageError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text to show for a submission error, or "" when
// the error is not caused by the submitted data.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ie *ImageError
	if errors.As(err, &ie) {
		return fmt.Sprintf("%s: %s", ie.Filename, ie.Message)
	}
	return ""
}

// fromValidator converts validator errors into a single ValidationError.
func fromValidator(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch {
	case fe.Field() == "Email" && fe.Tag() == "email":
		return &ValidationError{Field: field, Message: MsgInvalidEmail}
	case fe.Field() == "ContentType" && fe.Tag() == "startswith":
		return &ValidationError{Field: "images", Message: MsgNotAnImage}
	default:
		return &ValidationError{Field: field, Message: MsgMissingInformation}
	}
}

func tooManyImages(maxImages int) error {
	msg := MsgTooManyImages
	if maxImages != DefaultMaxImages {
		msg = fmt.Sprintf("Please select up to %d images only.", maxImages)
	}
	return &ValidationError{Field: "images", Message: msg}
}
