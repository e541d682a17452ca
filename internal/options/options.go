// Package options turns the untyped query parameters of a screenshot request
// into typed, validated values.
package options

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/apperrors"
)

// Query parameter names.
const (
	ParamURL      = "url"
	ParamSelector = "selector"
	ParamBase64   = "base64"
	ParamFullPage = "fullPage"
	ParamQuality  = "quality"
	ParamType     = "type"
	ParamTimeout  = "timeout"
)

// flagOn is the only value that switches a boolean parameter on.
const flagOn = "1"

// Parser validates requests against service limits. The zero value applies
// no upper bound on timeouts.
type Parser struct {
	// MaxTimeout rejects requested timeouts above it when positive.
	MaxTimeout time.Duration
}

// ParseCaptureOptions maps rendering options using a zero Parser.
func ParseCaptureOptions(values url.Values) (schemas.CaptureOptions, error) {
	return Parser{}.ParseCaptureOptions(values)
}

// ParseRequest parses a full request using a zero Parser.
func ParseRequest(values url.Values) (schemas.ScreenshotRequest, error) {
	return Parser{}.ParseRequest(values)
}

// ParseRequest validates the target URL and selector/base64 switches, then
// maps the rendering options. Any failure is a KindInvalidArgument error.
func (p Parser) ParseRequest(values url.Values) (schemas.ScreenshotRequest, error) {
	var req schemas.ScreenshotRequest

	target, err := ValidateURL(values.Get(ParamURL))
	if err != nil {
		return req, err
	}

	opts, err := p.ParseCaptureOptions(values)
	if err != nil {
		return req, err
	}

	req.URL = target
	req.Selector = values.Get(ParamSelector)
	req.Base64 = values.Get(ParamBase64) == flagOn
	req.Options = opts
	return req, nil
}

// ParseCaptureOptions maps fullPage, quality, type and timeout. Absent or
// empty parameters leave the corresponding field at its zero value.
func (p Parser) ParseCaptureOptions(values url.Values) (schemas.CaptureOptions, error) {
	var opts schemas.CaptureOptions

	opts.FullPage = values.Get(ParamFullPage) == flagOn

	if raw := values.Get(ParamType); raw != "" {
		t := schemas.ImageType(strings.ToLower(raw))
		if !t.Valid() {
			return opts, apperrors.InvalidArgument("type must be %q or %q, got %q", schemas.ImageTypePNG, schemas.ImageTypeJPEG, raw)
		}
		opts.Type = t
	}

	// png ignores quality entirely, so a malformed value is only an error
	// when it would actually reach the encoder.
	if raw := values.Get(ParamQuality); raw != "" && opts.ResolvedType() == schemas.ImageTypeJPEG {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apperrors.InvalidArgument("quality must be an integer, got %q", raw)
		}
		if q < 0 || q > 100 {
			return opts, apperrors.InvalidArgument("quality must be between 0 and 100, got %d", q)
		}
		opts.Quality = &q
	}

	if raw := values.Get(ParamTimeout); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apperrors.InvalidArgument("timeout must be an integer number of milliseconds, got %q", raw)
		}
		if ms <= 0 {
			return opts, apperrors.InvalidArgument("timeout must be positive, got %d", ms)
		}
		timeout := time.Duration(ms) * time.Millisecond
		if p.MaxTimeout > 0 && timeout > p.MaxTimeout {
			return opts, apperrors.InvalidArgument("timeout %dms exceeds the maximum of %dms", ms, p.MaxTimeout.Milliseconds())
		}
		opts.Timeout = timeout
	}

	return opts, nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host and
// returns it with an internationalised host converted to its ASCII form.
// Parameters reach here already percent-decoded by the query parser.
func ValidateURL(raw string) (string, error) {
	if raw == "" {
		return "", apperrors.InvalidArgument("url parameter is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", apperrors.InvalidArgument("url must start with http:// or https://")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", apperrors.New(apperrors.KindInvalidArgument, "url is malformed", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", apperrors.InvalidArgument("url must include a host")
	}

	// Hosts idna cannot map (IP literals, underscores) go to the engine as-is.
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == host {
		return raw, nil
	}

	newHost := ascii
	if port := u.Port(); port != "" {
		newHost = net.JoinHostPort(ascii, port)
	}
	return replaceHost(raw, u.Scheme, newHost), nil
}

// replaceHost swaps the host[:port] of raw for hostport, leaving the
// scheme, userinfo, path, query and fragment byte for byte as sent.
func replaceHost(raw, scheme, hostport string) string {
	prefix := len(scheme) + len("://")
	rest := raw[prefix:]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	var userinfo string
	if at := strings.LastIndex(rest[:end], "@"); at >= 0 {
		userinfo = rest[:at+1]
	}
	return raw[:prefix] + userinfo + hostport + rest[end:]
}
