package session

import (
	"fmt"
	"net/url"
)

// maxSlots is the number of indexed credential slots the upstream redirect
// may carry (token1..token5, acct1..acct5, cur1..cur5).
const maxSlots = 5

// CapturedAccount is one transient account/currency pair extracted from a
// redirect URL, keyed by account id in the Capture result.
type CapturedAccount struct {
	Token    string
	Currency string
}

// Capture extracts indexed credential triples from a post-redirect URL.
// Slot 1, when present, is persisted to the store as the primary credential
// before the cleaned URL is produced, so an interruption between the two
// steps cannot lose the captured token. The returned URL has its query and
// fragment stripped so secrets never remain in history or get re-sent on
// refresh.
//
// When no indexed token is present the call is a no-op: it returns an empty
// map and the URL unchanged.
func Capture(store Store, u *url.URL) (map[string]CapturedAccount, *url.URL, error) {
	q := u.Query()
	accounts := make(map[string]CapturedAccount)
	captured := false

	for i := 1; i <= maxSlots; i++ {
		tok := q.Get(fmt.Sprintf("token%d", i))
		if tok == "" {
			continue
		}
		captured = true
		acct := q.Get(fmt.Sprintf("acct%d", i))
		accounts[acct] = CapturedAccount{
			Token:    tok,
			Currency: q.Get(fmt.Sprintf("cur%d", i)),
		}
		if i == 1 {
			if err := store.Set(Credential{ActiveAccount: acct, DerivToken: tok}); err != nil {
				return nil, u, fmt.Errorf("persisting primary credential: %w", err)
			}
		}
	}

	if !captured {
		return accounts, u, nil
	}

	clean := *u
	clean.RawQuery = ""
	clean.Fragment = ""
	return accounts, &clean, nil
}
