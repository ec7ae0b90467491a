package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/client/capture"
	"github.com/dmitrijs2005/qrscan/internal/client/redirect"
	"github.com/dmitrijs2005/qrscan/internal/client/services"
	"github.com/dmitrijs2005/qrscan/internal/common"
)

var errUsage = errors.New("usage")

// Scan feeds payload to the capture session as a decoded frame and waits
// for the history append it triggers.
func (a *App) Scan(ctx context.Context, payload string) error {
	if payload == "" {
		fmt.Fprintln(a.out, "Usage: scan <payload>")
		return errUsage
	}
	if !a.capture.HandleFrame(payload) {
		fmt.Fprintf(a.out, "scanner is %s, frame dropped\n", a.capture.State())
		return nil
	}
	a.pipeline.Wait()
	return nil
}

func (a *App) printResolution(r services.Resolution) {
	out := r.Outcome
	fmt.Fprintf(a.out, "%s: %s\n", r.Classification.Kind, r.Classification.Payload)
	if out.Prompted && out.Choice == redirect.Cancel {
		fmt.Fprintln(a.out, "payment cancelled")
	}
	if r.Err != nil {
		fmt.Fprintf(a.out, "! %v\n", r.Err)
	}
	if out.ResumeAfter > 0 {
		fmt.Fprintf(a.out, "scanning resumes in %s\n", out.ResumeAfter)
	}
}

func (a *App) printRecording(r services.Recording) {
	switch {
	case r.Err != nil:
		fmt.Fprintf(a.out, "! history not updated: %v\n", r.Err)
	case r.Inserted:
		fmt.Fprintln(a.out, "added to history")
	}
}

// History prints the recorded scans, newest first.
func (a *App) History(ctx context.Context) error {
	records, err := a.engine.Scans.Records(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "no scans yet")
	}
	for _, r := range records {
		fmt.Fprintf(a.out, "%s  %-8s %s\n", formatTime(r.Timestamp), r.EventCategory, r.Code)
	}
	return nil
}

// Codes prints the created codes, newest first.
func (a *App) Codes(ctx context.Context) error {
	records, err := a.engine.Codes.Records(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "no codes yet")
	}
	for _, r := range records {
		fmt.Fprintf(a.out, "%s  %s  %s\n", formatTime(r.Timestamp), r.Content, r.ImageRef)
	}
	return nil
}

// Create renders content into a new code and registers it.
func (a *App) Create(ctx context.Context, content string) error {
	inserted, err := a.codes.Create(ctx, content)
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		fmt.Fprintln(a.out, "Usage: create <text>")
	case err != nil:
		fmt.Fprintf(a.out, "! code not saved: %v\n", err)
	case inserted:
		fmt.Fprintln(a.out, "code created")
	default:
		fmt.Fprintln(a.out, "code already exists")
	}
	return err
}

// Delete removes a scan from the local history.
func (a *App) Delete(ctx context.Context, code string) error {
	if code == "" {
		fmt.Fprintln(a.out, "Usage: delete <code>")
		return errUsage
	}
	removed, err := a.engine.Scans.Delete(ctx, code)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	if removed {
		fmt.Fprintln(a.out, "deleted")
	} else {
		fmt.Fprintln(a.out, "no such scan")
	}
	return nil
}

// Refresh reloads both histories. On failure the previous lists stay.
func (a *App) Refresh(ctx context.Context) error {
	err := a.engine.Refresh(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "! history not refreshed: %v\n", err)
	}
	return err
}

// Zoom parses factor and applies it.
func (a *App) Zoom(ctx context.Context, factor string) error {
	f, err := strconv.ParseFloat(factor, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: zoom <factor>")
		return errUsage
	}
	got, err := a.capture.SetZoom(f)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "zoom %.1fx\n", got)
	return nil
}

// Torch toggles the torch.
func (a *App) Torch(ctx context.Context) error {
	on, err := a.capture.ToggleTorch()
	switch {
	case errors.Is(err, common.ErrCapabilityUnsupported):
		fmt.Fprintln(a.out, "this device has no torch")
	case err != nil:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	case on:
		fmt.Fprintln(a.out, "torch on")
	default:
		fmt.Fprintln(a.out, "torch off")
	}
	return err
}

// Start activates the capture session. A denial shows the remediation
// prompt.
func (a *App) Start(ctx context.Context) error {
	err := a.capture.Activate(ctx)
	if errors.Is(err, common.ErrPermissionDenied) {
		if p, ok := a.capture.RemediationPrompt(); ok {
			fmt.Fprintf(a.out, "%s\n%s\nOpen settings: %s\n", p.Title, p.Message, p.SettingsURI)
		}
		return err
	}
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}

// Stop deactivates the capture session.
func (a *App) Stop(ctx context.Context) error {
	a.capture.Deactivate()
	return nil
}

// State prints the capture session state.
func (a *App) State(ctx context.Context) error {
	state := a.capture.State()
	fmt.Fprintf(a.out, "state: %s, zoom %.1fx, torch %s\n", state, a.capture.Zoom(), onOff(a.capture.TorchOn()))
	if state == capture.StateCooldown {
		fmt.Fprintf(a.out, "cooldown until %s\n", a.capture.CooldownUntil().Format(time.TimeOnly))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-                  "
	}
	return t.Local().Format(time.DateTime)
}
