package mock

import (
	"context"

	"github.com/bkellam/autochatter/internal/notify"
)

// Sender records delivered messages for tests.
type Sender struct {
	Err      error
	Messages []notify.Message
}

func (s *Sender) Send(_ context.Context, message notify.Message) error {
	if s.Err != nil {
		return s.Err
	}
	s.Messages = append(s.Messages, message)
	return nil
}
