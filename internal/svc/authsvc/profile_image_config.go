package authsvc

// ProfileImageConfig holds the limits applied to uploaded profile images.
type ProfileImageConfig struct {
	// MaxWidth is the width in pixels wider images are scaled down to
	MaxWidth int `env:"MAX_WIDTH" default:"512"`

	// MaxBytes bounds the encoded image, before base64
	MaxBytes int64 `env:"MAX_BYTES" default:"1048576"` // 1 MiB

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`
}
