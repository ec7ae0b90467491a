// Package capture implements the live decoding session: permission
// acquisition, running/stopped control, zoom and torch configuration, and
// the mandatory cooldown after every detection.
//
// # States
//
//	idle -> requestingPermission -> running | denied
//	running -> detecting -> cooldown -> running      (cooldown is timer driven)
//	running | cooldown -> stopped                   (Deactivate)
//	stopped -> running | requestingPermission       (Activate)
//
// Denied is terminal for a Controller; recovery needs a settings change,
// surfaced through RemediationPrompt.
//
// # Concurrency
//
// HandleFrame is called from the decoding pipeline's goroutine; all other
// methods may be called from any goroutine. Zoom and torch changes are
// bracketed by the device configuration lock, which is never held together
// with the history engine's single-writer context.
package capture
