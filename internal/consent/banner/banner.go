// Package banner renders the consent prompt and wires its Accept and Reject
// actions to the consent store and the restoration routine.
package banner

import (
	"log/slog"

	"github.com/iamakashcode/consent-sub001/internal/consent/dom"
	"github.com/iamakashcode/consent-sub001/internal/consent/engine"
	"github.com/iamakashcode/consent-sub001/internal/consent/state"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// ElementID identifies the banner's root element in the document.
const ElementID = "cg-consent-banner"

// Controller mounts the consent prompt at most once per page load and
// translates visitor actions into consent transitions.
type Controller struct {
	doc     *dom.Document
	store   *state.Store
	engine  *engine.Engine
	logger  *slog.Logger
	mounted *dom.Element
}

// NewController creates a banner controller bound to a document, consent
// store, and interception engine.
func NewController(doc *dom.Document, store *state.Store, eng *engine.Engine, logger *slog.Logger) *Controller {
	return &Controller{
		doc:    doc,
		store:  store,
		engine: eng,
		logger: logger.With("component", "consent_banner"),
	}
}

// Show renders the prompt if no consent decision has been recorded and the
// engine is active. Repeated calls while mounted are no-ops. Returns whether
// the banner is visible after the call.
func (c *Controller) Show() bool {
	if c.mounted != nil {
		return true
	}
	if c.engine.Status() != engine.StatusActive {
		c.logger.Warn("engine inactive, not rendering banner")
		return false
	}
	if c.store.State() != domain.ConsentUnset {
		return false
	}

	el := c.doc.CreateElement("div")
	el.SetAttribute("id", ElementID)
	el.SetAttribute("role", "dialog")
	c.doc.Append(el)
	c.mounted = el
	return true
}

// Mounted reports whether the banner is currently in the document.
func (c *Controller) Mounted() bool { return c.mounted != nil }

// Accept records the grant, removes the banner, and restores every blocked
// script. A restoration failure leaves the decision recorded; the scripts
// load on the next page view.
func (c *Controller) Accept() error {
	if err := c.store.SetState(domain.ConsentGranted); err != nil {
		return err
	}
	c.dismiss()
	if _, err := c.engine.Restore(); err != nil {
		c.logger.Error("restore after accept failed", "error", err)
		return err
	}
	return nil
}

// Reject records the denial and removes the banner. Blocked scripts stay
// blocked.
func (c *Controller) Reject() error {
	if err := c.store.SetState(domain.ConsentDenied); err != nil {
		return err
	}
	c.dismiss()
	return nil
}

func (c *Controller) dismiss() {
	if c.mounted == nil {
		return
	}
	c.doc.Remove(c.mounted)
	c.mounted = nil
}
