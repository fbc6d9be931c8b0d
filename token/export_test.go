package token

import "time"

// SetClock overrides the issuer's time source in tests.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}
