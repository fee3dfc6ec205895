// Package resilience decides whether a failed load is retried and turns
// terminal failures into user-facing diagnostics. The decision lives in one
// table keyed by failure category.
package resilience

import (
	"errors"
	"net/http"

	"github.com/reelmark/reelmark/control"
	"github.com/reelmark/reelmark/source"
)

// ErrLoadTimeout is reported when an attempt did not settle within the load timeout.
var ErrLoadTimeout = errors.New("load timed out")

// Category is the failure taxonomy the policy table is keyed by.
type Category string

const (
	CategoryTimeout             Category = "timeout"
	CategoryTransport           Category = "transport"
	CategoryUnauthorized        Category = "http-unauthorized"
	CategoryForbidden           Category = "http-forbidden"
	CategoryForbiddenRestricted Category = "http-forbidden-restricted"
	CategoryNotFound            Category = "http-not-found"
	CategoryLegal               Category = "http-legal"
	CategoryRateLimited         Category = "http-rate-limited"
	CategoryServer              Category = "http-server"
	CategoryHTTPOther           Category = "http-other"
	CategoryMalformed           Category = "malformed-stream"
	CategoryPlayback            Category = "playback"
	CategoryUnsupported         Category = "unsupported"
)

// Verdict is the policy decision for one failure.
type Verdict struct {
	Category  Category `json:"category"`
	Status    int      `json:"status,omitempty"`
	Retryable bool     `json:"retryable"`
}

type rule struct {
	retryable bool
	summary   string
	causes    []string
	steps     []string
}

var rules = map[Category]rule{
	CategoryTimeout: {
		retryable: true,
		summary:   "did not start loading in time",
		causes:    []string{"a slow or unstable connection", "the host is overloaded"},
		steps:     []string{"check your connection and try again"},
	},
	CategoryTransport: {
		retryable: true,
		summary:   "could not be reached",
		causes:    []string{"a network interruption", "the host refused the connection"},
		steps:     []string{"check your connection and try again"},
	},
	CategoryUnauthorized: {
		summary: "requires signing in (HTTP 401)",
		causes:  []string{"the link needs an account or an expired token"},
		steps:   []string{"confirm the link is public, or open it where you are signed in"},
	},
	CategoryForbidden: {
		retryable: true,
		summary:   "refused the request (HTTP 403)",
		causes:    []string{"a temporary block by the host", "a link that has expired"},
		steps:     []string{"try again in a moment", "get a fresh link"},
	},
	CategoryForbiddenRestricted: {
		retryable: true,
		summary:   "refused access (HTTP 403)",
		causes: []string{
			"the owner does not permit playback outside their site",
			"the video is not available in your region",
			"the video is private or needs an account with access",
		},
		steps: []string{"confirm the link is public and allows embedding", "try a VPN or a different region"},
	},
	CategoryNotFound: {
		summary: "was not found (HTTP 404)",
		causes:  []string{"the video was removed", "the link is mistyped"},
		steps:   []string{"confirm the link still opens in a browser"},
	},
	CategoryLegal: {
		summary: "is blocked for legal reasons (HTTP 451)",
		causes:  []string{"a takedown or regional legal restriction"},
		steps:   []string{"try a different region if that is permitted where you are"},
	},
	CategoryRateLimited: {
		retryable: true,
		summary:   "is rate limiting requests (HTTP 429)",
		causes:    []string{"too many requests in a short time"},
		steps:     []string{"wait a few minutes before trying again"},
	},
	CategoryServer: {
		retryable: true,
		summary:   "had a server error",
		causes:    []string{"an outage or maintenance at the host"},
		steps:     []string{"try again later"},
	},
	CategoryHTTPOther: {
		summary: "answered with an unexpected HTTP status",
		causes:  []string{"the link does not point at playable media"},
		steps:   []string{"confirm the link opens in a browser"},
	},
	CategoryMalformed: {
		summary: "sent a stream that could not be read",
		causes:  []string{"a broken or unsupported manifest or container"},
		steps:   []string{"open the link in a browser to check it plays there"},
	},
	CategoryPlayback: {
		summary: "stopped with a playback error",
		causes:  []string{"a decoding problem partway through the media", "the stream ended unexpectedly"},
		steps:   []string{"reopen the link", "try a different quality or source"},
	},
	CategoryUnsupported: {
		summary: "cannot be played here",
		causes:  []string{"the format or platform is not supported"},
		steps:   []string{"open the link in the platform's own app or site"},
	},
}

// Retryable reports whether category is eligible for automatic retry.
func (c Category) Retryable() bool {
	return rules[c].retryable
}

// Classify maps a load failure for desc onto the policy table. A 403 from an
// origin that gates access by account, region or embedding is still retried,
// but explained as an access problem.
func Classify(err error, desc source.Descriptor) Verdict {
	var (
		httpErr     *control.HTTPError
		playbackErr *control.PlaybackError
		category    Category
		status      int
	)

	switch {
	case errors.As(err, &playbackErr):
		category = CategoryPlayback
	case errors.Is(err, ErrLoadTimeout):
		category = CategoryTimeout
	case errors.Is(err, control.ErrMalformedStream):
		category = CategoryMalformed
	case errors.Is(err, control.ErrSourceNotFound):
		category = CategoryNotFound
	case errors.As(err, &httpErr):
		status = httpErr.Code
		category = httpCategory(status, desc)
	default:
		category = CategoryTransport
	}

	return Verdict{Category: category, Status: status, Retryable: category.Retryable()}
}

func httpCategory(status int, desc source.Descriptor) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryUnauthorized
	case status == http.StatusForbidden && desc.Restrictive():
		return CategoryForbiddenRestricted
	case status == http.StatusForbidden:
		return CategoryForbidden
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusUnavailableForLegalReasons:
		return CategoryLegal
	case status == http.StatusTooManyRequests:
		return CategoryRateLimited
	case status >= 500 && status <= 599:
		return CategoryServer
	default:
		return CategoryHTTPOther
	}
}
