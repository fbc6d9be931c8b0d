// Package session holds the client-side half of the credential pipeline:
// durable storage of the primary trading credential, redirect capture of
// post-OAuth query parameters, and the access guard for the protected bot
// page.
package session

// Credential is the primary credential persisted after a redirect capture.
// It is the only slot stored durably; secondary slots live just long enough
// to build a bot link.
type Credential struct {
	ActiveAccount string `json:"activeAccount"`
	DerivToken    string `json:"derivToken"`
}

// Store abstracts durable client-side credential storage so that capture
// and guard logic depend on an interface rather than a concrete mechanism.
type Store interface {
	// Get retrieves the stored credential. ok is false when nothing is
	// stored.
	Get() (cred Credential, ok bool)
	// Set persists the credential, replacing any previous value.
	Set(Credential) error
	// Clear removes the stored credential.
	Clear() error
}
