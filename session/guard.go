package session

// EntryPath is where unauthenticated visitors of the protected page are
// sent to re-authenticate.
const EntryPath = "/index.html"

// Guard checks whether a protected page load may proceed. The check is
// presence-based only: any stored non-empty token passes, with no freshness
// or authenticity validation. When ok is false the caller must redirect the
// visitor to EntryPath.
func Guard(store Store) (Credential, bool) {
	cred, ok := store.Get()
	if !ok || cred.DerivToken == "" {
		return Credential{}, false
	}
	return cred, true
}
