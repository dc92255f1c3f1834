package mq

import (
	"context"
	"errors"

	"storefront/models"
)

// WelcomeNotifier queues a welcome mail for every new account.
type WelcomeNotifier struct {
	queue Queue
}

func NewWelcomeNotifier(q Queue) *WelcomeNotifier {
	return &WelcomeNotifier{queue: q}
}

func (n *WelcomeNotifier) Welcome(ctx context.Context, id models.Identity) error {
	return n.queue.Enqueue(ctx, NewTask(KindWelcome, map[string]string{
		"username": id.Username,
		"email":    id.Email,
	}))
}

// WelcomeSender delivers the welcome mail.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, username, email string) error
}

// WelcomeHandler adapts a WelcomeSender to welcome tasks.
func WelcomeHandler(s WelcomeSender) HandlerFunc {
	return func(ctx context.Context, t Task) error {
		email := t.Payload["email"]
		if email == "" {
			return errors.New("welcome task without email")
		}
		return s.SendWelcome(ctx, t.Payload["username"], email)
	}
}
