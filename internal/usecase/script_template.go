package usecase

import "text/template"

// scriptTemplate renders the self-contained browser artifact for an enabled
// site. It embeds the same semantics the internal/consent packages model:
// the fixed storage key, the blocked-type marker, the createElement patch
// with an idempotency guard, the initial scan, the banner, and restoration.
// The output is deterministic for identical configuration input; nothing
// time- or random-dependent may appear here.
var scriptTemplate = template.Must(template.New("consent-script").Parse(`/*! consentgate {{.Variant}} site={{.SiteID}} */
(function () {
  "use strict";

  var SITE_ID = {{.SiteIDJSON}};
  var SITE_DOMAIN = {{.DomainJSON}};
  var SIGNATURES = {{.SignaturesJSON}};
  var CATEGORIES = {{.CategoriesJSON}};
  var STORAGE_KEY = "cg_consent";
  var BLOCKED_TYPE = "text/cg-blocked";
  var SRC_ATTR = "data-cg-src";
  var BANNER_ID = "cg-consent-banner";

  function hostAllowed() {
    var host = (window.location.hostname || "").toLowerCase();
    var domain = SITE_DOMAIN.toLowerCase();
    return host === domain || host.slice(-(domain.length + 1)) === "." + domain;
  }

  function isTracker(url) {
    if (!url) return false;
    var lower = String(url).toLowerCase();
    for (var i = 0; i < SIGNATURES.length; i++) {
      if (SIGNATURES[i] && lower.indexOf(SIGNATURES[i].toLowerCase()) !== -1) return true;
    }
    return false;
  }

  function getConsent() {
    try {
      var v = window.localStorage.getItem(STORAGE_KEY);
      if (v === "yes") return "granted";
      if (v === "no") return "denied";
    } catch (e) { /* private browsing: treat as unset */ }
    return "unset";
  }

  function setConsent(granted) {
    try {
      window.localStorage.setItem(STORAGE_KEY, granted ? "yes" : "no");
    } catch (e) { /* degrade: banner shows again next visit */ }
  }

  function quarantine(el, src) {
    try {
      el.setAttribute(SRC_ATTR, src);
      el.removeAttribute("src");
      el.type = BLOCKED_TYPE;
    } catch (e) { /* never break the host page */ }
  }

  function blockExisting() {
    var scripts = document.querySelectorAll("script[src]");
    for (var i = 0; i < scripts.length; i++) {
      var src = scripts[i].getAttribute("src");
      if (isTracker(src) && getConsent() !== "granted") quarantine(scripts[i], src);
    }
  }

  function interceptSrcWrites(el) {
    try {
      var pending = "";
      Object.defineProperty(el, "src", {
        configurable: true,
        get: function () { return pending; },
        set: function (value) {
          // Live consent check: restoration-time writes pass once granted.
          if (isTracker(value) && getConsent() !== "granted") {
            quarantine(el, value);
            return;
          }
          pending = value;
          el.setAttribute("src", value);
        }
      });
      var nativeSetAttribute = el.setAttribute;
      el.setAttribute = function (name, value) {
        if (String(name).toLowerCase() === "src" && isTracker(value) && getConsent() !== "granted") {
          nativeSetAttribute.call(el, SRC_ATTR, value);
          el.type = BLOCKED_TYPE;
          return;
        }
        nativeSetAttribute.call(el, name, value);
      };
    } catch (e) { /* frozen element: leave it alone */ }
  }

  function installHook() {
    if (document.__cgHooked) return;
    document.__cgHooked = true;
    var nativeCreate = document.createElement;
    document.createElement = function (tag) {
      var el = nativeCreate.apply(document, arguments);
      if (String(tag).toLowerCase() === "script") interceptSrcWrites(el);
      return el;
    };
  }

  function restoreBlocked() {
    var blocked = document.querySelectorAll("script[type='" + BLOCKED_TYPE + "']");
    for (var i = 0; i < blocked.length; i++) {
      var src = blocked[i].getAttribute(SRC_ATTR);
      if (src) {
        var fresh = document.createElement("script");
        fresh.async = true;
        fresh.src = src;
        document.head.appendChild(fresh);
      }
      if (blocked[i].parentNode) blocked[i].parentNode.removeChild(blocked[i]);
    }
  }

  function dismissBanner() {
    var el = document.getElementById(BANNER_ID);
    if (el && el.parentNode) el.parentNode.removeChild(el);
  }

  function showBanner() {
    if (getConsent() !== "unset") return;
    if (document.getElementById(BANNER_ID)) return;
    var el = document.createElement("div");
    el.id = BANNER_ID;
    el.setAttribute("role", "dialog");
    el.style.cssText = "position:fixed;bottom:0;left:0;right:0;z-index:2147483647;background:#1f2937;color:#f9fafb;padding:16px;font:14px/1.5 sans-serif;display:flex;justify-content:space-between;align-items:center;gap:12px;flex-wrap:wrap";
    var msg = document.createElement("span");
    msg.textContent = "This site uses cookies and tracking scripts (" + CATEGORIES.join(", ") + "). Allow them?";
    var accept = document.createElement("button");
    accept.textContent = "Accept";
    accept.style.cssText = "background:#10b981;color:#fff;border:0;border-radius:4px;padding:8px 16px;cursor:pointer";
    accept.onclick = function () {
      setConsent(true);
      dismissBanner();
      restoreBlocked();
    };
    var reject = document.createElement("button");
    reject.textContent = "Reject";
    reject.style.cssText = "background:transparent;color:#f9fafb;border:1px solid #6b7280;border-radius:4px;padding:8px 16px;cursor:pointer";
    reject.onclick = function () {
      setConsent(false);
      dismissBanner();
    };
    el.appendChild(msg);
    el.appendChild(accept);
    el.appendChild(reject);
    var mount = function () { document.body.appendChild(el); };
    if (document.body) mount();
    else document.addEventListener("DOMContentLoaded", mount);
  }

  function beacon() {
    try {
      var img = new Image(1, 1);
      img.src = {{.BeaconURLJSON}} + "?t=" + Date.now();
    } catch (e) { /* counting is best effort */ }
  }

  try {
    if (!hostAllowed()) {
      try { console.warn("consentgate: not configured for " + window.location.hostname); } catch (e) {}
      return;
    }
    installHook();
    blockExisting();
    showBanner();
    beacon();
  } catch (e) {
    try { console.warn("consentgate: disabled after error", e); } catch (ignored) {}
  }
})();
`))

// templateData is the per-site input to scriptTemplate. All JSON fields are
// pre-encoded so the template stays a dumb substitution.
type templateData struct {
	SiteID         string
	Variant        string
	SiteIDJSON     string
	DomainJSON     string
	SignaturesJSON string
	CategoriesJSON string
	BeaconURLJSON  string
}
