// Package engine implements the consent-enforcement state machine that gates
// tracking-script loads behind the visitor's consent decision.
//
// The engine activates once per page, after confirming the page hostname
// belongs to the configured site. On activation it neutralizes every
// tracking script already present in the document, then hooks the document's
// source-assignment primitive so scripts created afterwards are quarantined
// at assignment time, before any fetch would be issued. In the generated
// browser artifact the hook is installed by patching document.createElement
// and wrapping the src setter of each new script element; the dom package
// funnels every src write, property or attribute, through one primitive, so
// both paths are covered here. Scripts injected via innerHTML are not
// intercepted.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/iamakashcode/consent-sub001/internal/consent/dom"
	"github.com/iamakashcode/consent-sub001/internal/consent/signature"
	"github.com/iamakashcode/consent-sub001/internal/consent/state"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

const (
	// BlockedType is the reserved type value written to a quarantined script
	// element. It both suppresses execution and marks the element eligible
	// for restoration.
	BlockedType = "text/cg-blocked"

	// BlockedSrcAttr carries a quarantined element's intended source URL.
	BlockedSrcAttr = "data-cg-src"

	hookName = "consent-engine"
)

// Status is the engine's lifecycle state. There is no deactivation; an
// active engine lives until page navigation.
type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
)

// ErrDomainMismatch is returned when the page hostname does not belong to
// the configured site. The engine fails closed: no blocking, no banner.
var ErrDomainMismatch = fmt.Errorf("page hostname does not match configured domain")

// Engine enforces the consent decision over one document.
type Engine struct {
	cfg    domain.SiteConfig
	doc    *dom.Document
	store  *state.Store
	logger *slog.Logger
	status Status
}

// New creates an inactive engine for the given site configuration, document,
// and consent store.
func New(cfg domain.SiteConfig, doc *dom.Document, store *state.Store, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		doc:    doc,
		store:  store,
		logger: logger.With("component", "consent_engine", "site_id", cfg.SiteID),
		status: StatusInactive,
	}
}

// Status returns the engine's current lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Activate verifies the tenant boundary, neutralizes tracking scripts
// already in the document, and installs the interception hook. Calling
// Activate on an active engine is a no-op. A hostname outside the configured
// domain returns ErrDomainMismatch and leaves the engine inactive. Failures
// never panic out into the host.
func (e *Engine) Activate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine activation failed: %v", r)
			e.logger.Error("activation panicked, interception disabled", "panic", r)
		}
	}()

	if e.status == StatusActive {
		return nil
	}

	host := e.doc.Hostname()
	if !e.cfg.AllowsHost(host) {
		e.logger.Warn("refusing to activate on foreign hostname", "hostname", host, "domain", e.cfg.Domain)
		return ErrDomainMismatch
	}

	e.blockExisting()

	installed := e.doc.WrapAssignSrc(hookName, func(next dom.AssignSrcFunc) dom.AssignSrcFunc {
		return func(el *dom.Element, src string) {
			// The consent check reads live state so that restoration-time
			// assignments pass through once consent is granted.
			if el.Tag == "script" && signature.IsTracker(src, e.cfg.TrackerSignatures) && e.store.State() != domain.ConsentGranted {
				quarantine(el, src)
				return
			}
			next(el, src)
		}
	})
	if !installed {
		// Another engine instance already owns the hook on this document.
		e.logger.Warn("interception hook already installed, reusing it")
	}

	e.status = StatusActive
	e.logger.Info("interception active", "blocked_existing", len(e.blocked()))
	return nil
}

// blockExisting neutralizes every script already present in the document
// whose source matches a tracking signature, unless consent is granted.
func (e *Engine) blockExisting() {
	if e.store.State() == domain.ConsentGranted {
		return
	}
	for _, el := range e.doc.Scripts() {
		src := el.Src()
		if src == "" || el.Type() == BlockedType {
			continue
		}
		if signature.IsTracker(src, e.cfg.TrackerSignatures) {
			quarantine(el, src)
		}
	}
}

// quarantine rewrites an element so the browser will neither execute nor
// fetch it, preserving the intended source for restoration.
func quarantine(el *dom.Element, src string) {
	el.SetAttribute(BlockedSrcAttr, src)
	el.SetType(BlockedType)
	el.RemoveAttribute("src")
}

// blocked returns the quarantined script elements currently in the document.
func (e *Engine) blocked() []*dom.Element {
	var out []*dom.Element
	for _, el := range e.doc.Scripts() {
		if el.Type() == BlockedType {
			out = append(out, el)
		}
	}
	return out
}

// Restore rehydrates every quarantined element into a fresh, asynchronously
// loading script element in head and removes the placeholder. It does
// nothing unless consent is granted, and is idempotent: restored elements
// lose the blocked marker, so a second call finds nothing to do. Returns the
// number of scripts restored.
func (e *Engine) Restore() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("restore failed: %v", r)
			e.logger.Error("restore panicked", "panic", r)
		}
	}()

	if e.store.State() != domain.ConsentGranted {
		return 0, nil
	}

	for _, el := range e.blocked() {
		src, ok := el.Attribute(BlockedSrcAttr)
		if !ok || src == "" {
			e.doc.Remove(el)
			continue
		}

		fresh := e.doc.CreateElement("script")
		fresh.Async = true
		// Goes through the live hook; consent is granted, so it passes.
		fresh.SetSrc(src)
		e.doc.AppendToHead(fresh)
		e.doc.Remove(el)
		n++
	}

	if n > 0 {
		e.logger.Info("restored blocked scripts", "count", n)
	}
	return n, nil
}
