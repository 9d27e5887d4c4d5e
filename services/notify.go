package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
)

// Notice is a short transient message for whoever triggered an action.
type Notice struct {
	Kind    NoticeKind        `json:"kind"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

func NothingToExportNotice() Notice {
	return Notice{Kind: NoticeWarning, Title: "Export", Message: "No hay reportes para exportar"}
}

func ExportedNotice(a *Artifact) Notice {
	return Notice{
		Kind:    NoticeSuccess,
		Title:   "Export",
		Message: fmt.Sprintf("%d reportes exportados a %s", a.Count, a.Filename),
		Data:    map[string]string{"filename": a.Filename},
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the service log and keeps the last few for
// inspection.
type LogNotifier struct {
	mu     sync.Mutex
	recent []Notice
}

const recentNotices = 32

func (l *LogNotifier) Notify(_ context.Context, n Notice) error {
	log.Printf("notice [%s] %s: %s", n.Kind, n.Title, n.Message)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = append(l.recent, n)
	if len(l.recent) > recentNotices {
		l.recent = l.recent[len(l.recent)-recentNotices:]
	}
	return nil
}

func (l *LogNotifier) Recent() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notice, len(l.recent))
	copy(out, l.recent)
	return out
}

// FCMNotifier publishes notices to a Firebase Cloud Messaging topic that the
// admin dashboards subscribe to.
type FCMNotifier struct {
	client *messaging.Client
	topic  string
}

func NewFCMNotifier(ctx context.Context, app *firebase.App, topic string) (*FCMNotifier, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %w", err)
	}
	return &FCMNotifier{client: client, topic: topic}, nil
}

func (f *FCMNotifier) Notify(ctx context.Context, n Notice) error {
	data := map[string]string{"payload": "notice", "kind": string(n.Kind)}
	for k, v := range n.Data {
		data[k] = v
	}
	message := &messaging.Message{
		Data: data,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Topic: f.topic,
	}
	response, err := f.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	log.Printf("notice sent to topic %s: %s", f.topic, response)
	return nil
}

// MultiNotifier fans a notice out to every notifier, logging failures.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n Notice) error {
	var firstErr error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			log.Printf("notifier failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
