// Package mail delivers one-time codes to users. Delivery is best-effort:
// a failed send never fails or rolls back code issuance.
package mail

import "context"

// Sender delivers an OTP to an address. kind is the challenge purpose
// ("login" or "registration") so providers can pick the right template.
type Sender interface {
	Send(ctx context.Context, to, code, kind string) error
}
