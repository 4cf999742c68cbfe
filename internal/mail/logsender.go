package mail

import (
	"context"
	"log"
)

// LogSender is a Sender for development that logs instead of delivering.
// The code itself is logged; never use outside development.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, code, kind string) error {
	log.Printf("mail: [dev] would send %s code %s to %s", kind, code, to)
	return nil
}
