package authsvc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var interpolMap = map[string]draw.Interpolator{
	"nearestneighbor": draw.NearestNeighbor,
	"catmullrom":      draw.CatmullRom,
	"bilinear":        draw.BiLinear,
	"approxbilinear":  draw.ApproxBiLinear,
}

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// UpdateProfileImage uploads data as the profile image of the signed-in user. JPEG,
// PNG and TIFF are accepted; images wider than the configured maximum are scaled
// down and TIFF is converted to PNG. The image is sent inline as a data URI.
func (s *AuthService) UpdateProfileImage(ctx context.Context, data []byte) (_ domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update profile image failed", "error", err)
		} else {
			log.DebugContext(ctx, "profile image updated")
		}
	}()

	uri, err := s.profileImageURI(data)
	if err != nil {
		return domain.User{}, err
	}

	log = log.With(logging.Group("image", "size", len(uri)))

	return s.UpdateProfile(ctx, domain.UpdateProfileRequest{ProfileImage: uri})
}

// profileImageURI prepares data for upload and returns it as a data URI.
func (s *AuthService) profileImageURI(data []byte) (string, error) {
	ctype, err := sniffImageType(data)
	if err != nil {
		return "", fmt.Errorf("sniff image type: %w", err)
	}

	prepared, outType, err := prepareImage(data, ctype, s.Config.ProfileImage)
	if err != nil {
		return "", err
	}

	if maxBytes := s.Config.ProfileImage.MaxBytes; maxBytes > 0 && int64(len(prepared)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", domain.ErrImageTooLarge, len(prepared), maxBytes)
	}

	return "data:" + outType + ";base64," + base64.StdEncoding.EncodeToString(prepared), nil
}

// prepareImage decodes data, scales it down to cfg.MaxWidth if it is wider, and
// re-encodes it in the upload type. Images that need neither scaling nor conversion
// are returned unchanged.
func prepareImage(data []byte, ctype string, cfg ProfileImageConfig) ([]byte, string, error) {
	outType, ok := uploadTypes[ctype]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, ctype)
	}

	decoder, err := getDecoderByType(ctype)
	if err != nil {
		return nil, "", fmt.Errorf("get decoder: %w", err)
	}

	original, err := decoder(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	width := original.Bounds().Dx()
	if width == 0 {
		return nil, "", domain.ErrImageEmpty
	}

	if (cfg.MaxWidth <= 0 || width <= cfg.MaxWidth) && outType == ctype {
		return data, outType, nil
	}

	bitmap := original

	if cfg.MaxWidth > 0 && width > cfg.MaxWidth {
		bitmap, err = resizeImage(original, cfg.MaxWidth, cfg.Interpolator)
		if err != nil {
			return nil, "", fmt.Errorf("resize image: %w", err)
		}
	}

	encoder, err := getEncoderByType(outType)
	if err != nil {
		return nil, "", fmt.Errorf("get encoder: %w", err)
	}

	var buf bytes.Buffer
	if err := encoder(&buf, bitmap); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), outType, nil
}

// resizeImage scales an image to the given width, keeping the aspect ratio.
func resizeImage(original image.Image, width int, interpolator string) (image.Image, error) {
	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, fmt.Errorf("get interpolator: %w", err)
	}

	ratio := float64(width) / float64(original.Bounds().Dx())
	height := max(int(float64(original.Bounds().Dy())*ratio), 1)

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	interpol.Scale(bitmap, bitmap.Bounds(), original, original.Bounds(), draw.Over, nil)

	return bitmap, nil
}
