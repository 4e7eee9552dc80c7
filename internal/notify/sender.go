package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Sender interface {
	Send(ctx context.Context, n Notice) error
}

// LogSender writes notices to the log instead of an outside channel.
type LogSender struct {
	Log *logrus.Logger
}

func (s LogSender) Send(_ context.Context, n Notice) error {
	s.Log.WithFields(logrus.Fields{
		"notice_id":    n.ID,
		"kind":         n.Kind,
		"order_number": n.OrderNumber,
		"chat_link":    n.ChatLink,
	}).Info(n.Text())
	return nil
}
