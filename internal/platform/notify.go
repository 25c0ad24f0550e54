package platform

import (
	"context"
	"strconv"
	"time"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Expire  time.Duration
	Icon    string
}

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifySend shows notifications with notify-send.
type NotifySend struct {
	runner  Runner
	appName string
}

func NewNotifySend(r Runner, appName string) *NotifySend {
	return &NotifySend{runner: r, appName: appName}
}

func (s *NotifySend) Notify(ctx context.Context, n Notification) error {
	if _, err := FirstAvailable(s.runner, "notify-send"); err != nil {
		return err
	}

	if n.Urgency == "" {
		n.Urgency = UrgencyNormal
	}

	args := []string{"-u", string(n.Urgency)}
	if n.Expire > 0 {
		args = append(args, "-t", strconv.FormatInt(n.Expire.Milliseconds(), 10))
	}
	if s.appName != "" {
		args = append(args, "-a", s.appName)
	}
	if n.Icon != "" {
		args = append(args, "-i", n.Icon)
	}
	args = append(args, n.Title)
	if n.Body != "" {
		args = append(args, n.Body)
	}

	_, err := s.runner.Run(ctx, "notify-send", args...)
	return err
}
