// Package dispatch classifies decoded payloads into the action the app
// should take for them.
package dispatch

import (
	"net/url"
	"strings"
)

// Kind is the classification result.
type Kind int

const (
	FreeText Kind = iota
	Payment
	WebLink
)

func (k Kind) String() string {
	switch k {
	case Payment:
		return "payment"
	case WebLink:
		return "weblink"
	default:
		return "freetext"
	}
}

// DefaultPaymentSchemes lists the URI schemes treated as payment requests.
var DefaultPaymentSchemes = []string{"upi"}

// Env reports what the host environment can open.
type Env interface {
	CanOpen(scheme string) bool
}

// EnvFunc adapts a function to Env.
type EnvFunc func(scheme string) bool

func (f EnvFunc) CanOpen(scheme string) bool { return f(scheme) }

// Classification is a classified payload. URL is set for Payment and
// WebLink.
type Classification struct {
	Kind    Kind
	Payload string
	URL     *url.URL
}

// Classifier is a pure payload classifier.
type Classifier struct {
	PaymentSchemes []string
	Env            Env
}

// NewClassifier returns a classifier for the given payment schemes. An empty
// list falls back to DefaultPaymentSchemes.
func NewClassifier(env Env, paymentSchemes ...string) *Classifier {
	if len(paymentSchemes) == 0 {
		paymentSchemes = DefaultPaymentSchemes
	}
	return &Classifier{PaymentSchemes: paymentSchemes, Env: env}
}

// Classify returns Payment when the payload scheme matches a payment scheme
// (case-insensitively), WebLink when it is an absolute URL the environment
// can open, and FreeText otherwise.
func (c *Classifier) Classify(payload string) Classification {
	trimmed := strings.TrimSpace(payload)

	if scheme, ok := schemeOf(trimmed); ok && c.isPayment(scheme) {
		u, _ := url.Parse(trimmed)
		return Classification{Kind: Payment, Payload: payload, URL: u}
	}

	if u, err := url.Parse(trimmed); err == nil && u.IsAbs() && (u.Host != "" || u.Opaque != "") {
		if c.Env != nil && c.Env.CanOpen(strings.ToLower(u.Scheme)) {
			return Classification{Kind: WebLink, Payload: payload, URL: u}
		}
	}

	return Classification{Kind: FreeText, Payload: payload}
}

func (c *Classifier) isPayment(scheme string) bool {
	for _, s := range c.PaymentSchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// schemeOf extracts an RFC 3986 scheme without requiring the rest of the
// payload to parse, so malformed payment URIs still classify as payments.
func schemeOf(s string) (string, bool) {
	scheme, _, ok := strings.Cut(s, ":")
	if !ok || scheme == "" {
		return "", false
	}
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return "", false
		}
	}
	return scheme, true
}
