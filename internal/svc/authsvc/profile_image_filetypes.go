package authsvc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/tiff"

	"github.com/mkrupp/luxclient/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
)

//nolint:gochecknoglobals
var (
	imageMagic = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
		MIMETypeTIFF: {"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"},
	}

	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeJPEG: jpeg.Decode,
		MIMETypeTIFF: tiff.Decode,
		MIMETypePNG:  png.Decode,
	}

	imageEncoders = map[string]func(io.Writer, image.Image) error{
		MIMETypeJPEG: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 85}) },
		MIMETypePNG:  png.Encode,
	}

	// uploadTypes maps a source type to the type it is uploaded as. Browsers cannot
	// display TIFF, so it is converted.
	uploadTypes = map[string]string{
		MIMETypeJPEG: MIMETypeJPEG,
		MIMETypePNG:  MIMETypePNG,
		MIMETypeTIFF: MIMETypePNG,
	}
)

// sniffImageType identifies the image type from its magic bytes.
func sniffImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ErrImageEmpty
	}

	for mimeType, headers := range imageMagic {
		for _, header := range headers {
			if bytes.HasPrefix(data, []byte(header)) {
				return mimeType, nil
			}
		}
	}

	return "", domain.ErrImageTypeNotSupported
}

func getDecoderByType(mimeType string) (func(io.Reader) (image.Image, error), error) {
	decoder, ok := imageDecoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, mimeType)
	}

	return decoder, nil
}

func getEncoderByType(mimeType string) (func(io.Writer, image.Image) error, error) {
	encoder, ok := imageEncoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, mimeType)
	}

	return encoder, nil
}
