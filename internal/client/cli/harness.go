package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/qrscan/internal/client/capture"
	"github.com/dmitrijs2005/qrscan/internal/client/redirect"
)

// syncWriter serializes writes; scan notices arrive from the history
// goroutine while the REPL is printing.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// printingOpener prints targets instead of launching them. Web schemes are
// always openable; the wallet scheme only when the wallet is "installed".
type printingOpener struct {
	out     io.Writer
	schemes map[string]struct{}
}

func newPrintingOpener(out io.Writer, walletURI string, walletInstalled bool) *printingOpener {
	o := &printingOpener{
		out:     out,
		schemes: map[string]struct{}{"http": {}, "https": {}},
	}
	if walletInstalled {
		if u, err := url.Parse(walletURI); err == nil && u.Scheme != "" {
			o.schemes[strings.ToLower(u.Scheme)] = struct{}{}
		}
	}
	return o
}

func (o *printingOpener) CanOpen(scheme string) bool {
	_, ok := o.schemes[strings.ToLower(scheme)]
	return ok
}

func (o *printingOpener) Open(ctx context.Context, target string) error {
	_, err := fmt.Fprintf(o.out, "-> opening %s\n", target)
	return err
}

// terminalPrompter asks on the terminal whether to install the wallet.
type terminalPrompter struct {
	app *App
}

func (p terminalPrompter) PromptInstall(ctx context.Context) (redirect.Choice, error) {
	yes, err := GetYesNo(p.app.reader, "Payment app not installed. Install it?", p.app.out)
	if err != nil {
		return redirect.Cancel, err
	}
	if yes {
		return redirect.Install, nil
	}
	return redirect.Cancel, nil
}

// terminalAuthorizer plays the system camera permission prompt.
type terminalAuthorizer struct {
	app *App

	mu     sync.Mutex
	status capture.PermissionStatus
}

func (a *terminalAuthorizer) Status() capture.PermissionStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *terminalAuthorizer) Request(ctx context.Context) (bool, error) {
	granted, err := GetYesNo(a.app.reader, "Allow qrscan to use the camera?", a.app.out)
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if granted {
		a.status = capture.PermissionGranted
	} else {
		a.status = capture.PermissionDenied
	}
	return granted, nil
}

// renderPlaceholder stands in for the platform code renderer. It returns a
// stable reference derived from the content.
func renderPlaceholder(ctx context.Context, content string) (string, error) {
	sum := sha256.Sum256([]byte(content))
	return "qrscan-render/" + hex.EncodeToString(sum[:8]) + ".png", nil
}
