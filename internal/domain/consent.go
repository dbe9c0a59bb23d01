package domain

// ConsentState is the visitor's recorded consent decision.
type ConsentState string

const (
	// ConsentUnset means no decision has been recorded yet.
	ConsentUnset ConsentState = "unset"
	// ConsentGranted means the visitor accepted tracking scripts.
	ConsentGranted ConsentState = "granted"
	// ConsentDenied means the visitor rejected tracking scripts.
	ConsentDenied ConsentState = "denied"
)

// ConsentStorageKey is the fixed browser-storage key the consent decision is
// persisted under, one per origin.
const ConsentStorageKey = "cg_consent"

// Stored wire values for the consent decision. Absence of the key means unset.
const (
	ConsentValueGranted = "yes"
	ConsentValueDenied  = "no"
)

// CanTransition reports whether a consent decision may move from one state to
// the next by explicit user action. Granted is terminal within a session;
// a denied visitor may still accept later if the banner is shown again.
func (s ConsentState) CanTransition(next ConsentState) bool {
	switch s {
	case ConsentUnset:
		return next == ConsentGranted || next == ConsentDenied
	case ConsentDenied:
		return next == ConsentGranted
	default:
		return false
	}
}
