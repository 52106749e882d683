// Package notify delivers outbound messages. Delivery is best effort: a
// failed send is logged and counted but never reported back as a failure of
// the operation that triggered it.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"stars-bot/internal/metrics"
	"stars-bot/internal/models"
)

type Button struct {
	Text string
	Data string
	URL  string
}

type Message struct {
	Text    string
	Buttons [][]Button
}

type Sender interface {
	Send(ctx context.Context, chatID int64, msg Message) error
}

// Editor is implemented by senders that can rewrite a message sent earlier.
type Editor interface {
	Edit(ctx context.Context, chatID int64, messageID int, msg Message) error
}

type Notifier struct {
	sender Sender
	log    *logrus.Entry
}

func NewNotifier(sender Sender, log *logrus.Entry) *Notifier {
	return &Notifier{sender: sender, log: log.WithField("component", "notifier")}
}

// Notify sends msg to chatID and reports whether it was delivered.
func (n *Notifier) Notify(ctx context.Context, chatID int64, msg Message) bool {
	if err := n.send(ctx, chatID, msg); err != nil {
		n.log.WithFields(logrus.Fields{"chat_id": chatID, "error": err}).Warn("Failed to deliver message")
		return false
	}
	return true
}

func (n *Notifier) send(ctx context.Context, chatID int64, msg Message) error {
	if err := n.sender.Send(ctx, chatID, msg); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %w", models.ErrDeliveryFailed, err)
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	return nil
}

// Edit replaces the text and keyboard of an earlier message; a message
// without buttons loses its keyboard. It reports false when the sender cannot
// edit or the edit failed.
func (n *Notifier) Edit(ctx context.Context, chatID int64, messageID int, msg Message) bool {
	editor, ok := n.sender.(Editor)
	if !ok {
		return false
	}
	if err := editor.Edit(ctx, chatID, messageID, msg); err != nil {
		metrics.Notifications.WithLabelValues("failed").Inc()
		n.log.WithFields(logrus.Fields{"chat_id": chatID, "message_id": messageID, "error": err}).Warn("Failed to edit message")
		return false
	}
	metrics.Notifications.WithLabelValues("edited").Inc()
	return true
}
