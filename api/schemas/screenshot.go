package schemas

import "time"

// -- Image Types --

// ImageType is the encoding of a captured screenshot.
type ImageType string

const (
	ImageTypePNG  ImageType = "png"
	ImageTypeJPEG ImageType = "jpeg"
)

// DefaultImageType is used when a request does not name a type.
const DefaultImageType = ImageTypePNG

// DefaultCaptureTimeout bounds navigation and capture when neither the
// request nor the configuration supplies a timeout.
const DefaultCaptureTimeout = 30 * time.Second

// ContentType returns the MIME type for the image type. Anything that is
// not jpeg is served as png.
func (t ImageType) ContentType() string {
	if t == ImageTypeJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Valid reports whether t is one of the supported encodings.
func (t ImageType) Valid() bool {
	return t == ImageTypePNG || t == ImageTypeJPEG
}

// -- Capture Options --

// CaptureOptions is the typed form of the rendering options accepted on the
// query string. Fields the caller did not supply keep their zero value so
// the browser capability applies its own defaults.
type CaptureOptions struct {
	// FullPage captures the whole scrollable page instead of the viewport.
	FullPage bool `json:"fullPage,omitempty"`
	// Quality is the jpeg compression quality (0-100). It is nil when absent
	// and is never forwarded for png output.
	Quality *int `json:"quality,omitempty"`
	// Type selects the output encoding. Empty means DefaultImageType.
	Type ImageType `json:"type,omitempty"`
	// Timeout bounds navigation and capture individually. Zero means the
	// configured default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ResolvedType returns the effective image type.
func (o CaptureOptions) ResolvedType() ImageType {
	if o.Type == "" {
		return DefaultImageType
	}
	return o.Type
}

// ResolvedQuality returns the quality to hand to the engine and whether one
// should be sent at all. Quality only applies to jpeg output.
func (o CaptureOptions) ResolvedQuality() (int, bool) {
	if o.Quality == nil || o.ResolvedType() != ImageTypeJPEG {
		return 0, false
	}
	return *o.Quality, true
}

// ResolvedTimeout returns the timeout, falling back to def (and then to
// DefaultCaptureTimeout) when none was requested.
func (o CaptureOptions) ResolvedTimeout(def time.Duration) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if def > 0 {
		return def
	}
	return DefaultCaptureTimeout
}

// -- Request / Result --

// ScreenshotRequest is a validated screenshot request. URL always carries an
// http or https scheme once a request has been parsed.
type ScreenshotRequest struct {
	URL      string         `json:"url"`
	Selector string         `json:"selector,omitempty"`
	Base64   bool           `json:"base64,omitempty"`
	Options  CaptureOptions `json:"options"`
}

// ScreenshotResult holds the bytes produced by a single capture.
type ScreenshotResult struct {
	Data []byte
	Type ImageType
}

// ContentType returns the MIME type matching the result's encoding.
func (r *ScreenshotResult) ContentType() string {
	return r.Type.ContentType()
}
