package redirect

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/client/dispatch"
	"github.com/dmitrijs2005/qrscan/internal/clockx"
	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/logging"
)

const (
	DefaultWalletURI    = "phonepe://pay"
	DefaultStoreURL     = "https://play.google.com/store/apps/details?id=com.phonepe.app"
	DefaultSearchURL    = "https://www.google.com/search?q="
	DefaultSourceMarker = "source=upi_qr"
	DefaultResumeDelay  = 2 * time.Second
)

// Opener opens external targets.
type Opener interface {
	CanOpen(scheme string) bool
	Open(ctx context.Context, target string) error
}

// Choice is the answer to the install prompt.
type Choice int

const (
	Cancel Choice = iota
	Install
)

func (c Choice) String() string {
	if c == Install {
		return "install"
	}
	return "cancel"
}

// InstallPrompter asks the user whether to install the missing wallet.
type InstallPrompter interface {
	PromptInstall(ctx context.Context) (Choice, error)
}

// Resumer restarts detection. capture.Controller implements it.
type Resumer interface {
	Resume() bool
}

// Config holds the redirect targets.
type Config struct {
	WalletURI    string
	StoreURL     string
	SearchURL    string
	SourceMarker string
	ResumeDelay  time.Duration
}

// DefaultConfig returns the stock targets.
func DefaultConfig() Config {
	return Config{
		WalletURI:    DefaultWalletURI,
		StoreURL:     DefaultStoreURL,
		SearchURL:    DefaultSearchURL,
		SourceMarker: DefaultSourceMarker,
		ResumeDelay:  DefaultResumeDelay,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WalletURI == "" {
		c.WalletURI = d.WalletURI
	}
	if c.StoreURL == "" {
		c.StoreURL = d.StoreURL
	}
	if c.SearchURL == "" {
		c.SearchURL = d.SearchURL
	}
	if c.SourceMarker == "" {
		c.SourceMarker = d.SourceMarker
	}
	if c.ResumeDelay <= 0 {
		c.ResumeDelay = d.ResumeDelay
	}
	return c
}

// Outcome reports what Resolve did.
type Outcome struct {
	Kind     dispatch.Kind
	Target   string
	Opened   bool
	Prompted bool
	Choice   Choice
	// ResumeAfter is the delay before capture resumes; zero means resumed
	// immediately.
	ResumeAfter time.Duration
}

type Resolver struct {
	opener  Opener
	prompt  InstallPrompter
	resumer Resumer
	clock   clockx.Clock
	cfg     Config
	log     logging.Logger
}

func NewResolver(opener Opener, prompt InstallPrompter, resumer Resumer, clk clockx.Clock, cfg Config, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{
		opener:  opener,
		prompt:  prompt,
		resumer: resumer,
		clock:   clk,
		cfg:     cfg.withDefaults(),
		log:     log,
	}
}

// resumption fires the resumer at most once.
type resumption struct {
	once    sync.Once
	resumer Resumer
}

func (r *resumption) fire() {
	r.once.Do(func() { r.resumer.Resume() })
}

// Resolve performs the external action for c and schedules the resume.
// Errors from the external action are returned, but never prevent resumption.
func (r *Resolver) Resolve(ctx context.Context, c dispatch.Classification) (Outcome, error) {
	res := &resumption{resumer: r.resumer}
	out := Outcome{Kind: c.Kind}

	now := func() (Outcome, error) {
		res.fire()
		return out, nil
	}
	later := func(err error) (Outcome, error) {
		r.clock.AfterFunc(r.cfg.ResumeDelay, res.fire)
		out.ResumeAfter = r.cfg.ResumeDelay
		return out, err
	}

	switch c.Kind {
	case dispatch.Payment:
		target, err := r.PaymentTarget(c.Payload)
		if err != nil {
			r.log.Warn(ctx, "payment payload rejected", "error", err)
			res.fire()
			return out, err
		}
		out.Target = target

		if r.opener.CanOpen(schemeOf(r.cfg.WalletURI)) {
			return later(r.open(ctx, &out, target))
		}

		out.Prompted = true
		choice, err := r.prompt.PromptInstall(ctx)
		if err != nil {
			res.fire()
			return out, fmt.Errorf("install prompt: %w", err)
		}
		out.Choice = choice
		if choice == Cancel {
			return now()
		}
		out.Target = r.cfg.StoreURL
		return later(r.open(ctx, &out, r.cfg.StoreURL))

	case dispatch.WebLink:
		out.Target = c.Payload
		return later(r.open(ctx, &out, c.Payload))

	default:
		out.Target = r.SearchTarget(c.Payload)
		return later(r.open(ctx, &out, out.Target))
	}
}

func (r *Resolver) open(ctx context.Context, out *Outcome, target string) error {
	if err := r.opener.Open(ctx, target); err != nil {
		r.log.Warn(ctx, "open failed", "target", target, "error", err)
		return fmt.Errorf("open %q: %w", target, err)
	}
	out.Opened = true
	return nil
}

// PaymentTarget rewrites a payment URI into the wallet deep link. The
// payload's query pairs are kept verbatim and in order, followed by the
// source marker.
func (r *Resolver) PaymentTarget(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidURIFormat, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: missing scheme", common.ErrInvalidURIFormat)
	}

	// Pairs pass through undecoded.
	pairs := make([]string, 0, strings.Count(u.RawQuery, "&")+2)
	for _, p := range strings.Split(u.RawQuery, "&") {
		if p != "" {
			pairs = append(pairs, p)
		}
	}
	if len(pairs) == 0 {
		return "", fmt.Errorf("%w: missing query", common.ErrInvalidURIFormat)
	}
	pairs = append(pairs, r.cfg.SourceMarker)

	return r.cfg.WalletURI + "?" + strings.Join(pairs, "&"), nil
}

// SearchTarget builds a search URL for free text. Spaces encode as %20.
func (r *Resolver) SearchTarget(text string) string {
	return r.cfg.SearchURL + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func schemeOf(uri string) string {
	scheme, _, _ := strings.Cut(uri, ":")
	return strings.ToLower(scheme)
}
