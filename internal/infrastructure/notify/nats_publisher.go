package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	domain "techrank/internal/domain/performance"
	"techrank/internal/errs"
	"techrank/internal/ports"
)

// NATSPublisher fans stored notifications out on
// <prefix>.<companyId>.<userId>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

var _ ports.NotificationPublisher = (*NATSPublisher)(nil)

func Connect(url string, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("techrank"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", url)
	}
	return &NATSPublisher{conn: conn, prefix: strings.TrimSuffix(prefix, ".")}, nil
}

type wireNotification struct {
	ID        string         `json:"id"`
	CompanyID string         `json:"companyId"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (p *NATSPublisher) Publish(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	payload, err := json.Marshal(wireNotification{
		ID:        n.ID,
		CompanyID: n.CompanyID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return errs.Wrap(err, "encode notification")
	}

	if err := p.conn.Publish(Subject(p.prefix, n), payload); err != nil {
		return errs.Wrap(err, "publish notification")
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}

func Subject(prefix string, n domain.Notification) string {
	return prefix + "." + n.CompanyID + "." + n.UserID
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

var _ ports.NotificationPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, domain.Notification) error { return nil }
