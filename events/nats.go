package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher sends JSON-encoded domain events to NATS. A Publisher without a
// connection drops events silently, so the app runs without a broker.
type Publisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect dials url. An empty url yields a disabled publisher.
func Connect(url string, log *zap.Logger) (*Publisher, error) {
	if url == "" {
		log.Info("NATS disabled, domain events will not be published")
		return &Publisher{log: log}, nil
	}

	nc, err := nats.Connect(url,
		nats.Name("wanderlust"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info("connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &Publisher{nc: nc, log: log}, nil
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.nc != nil
}

func (p *Publisher) Publish(subject string, payload any) error {
	if !p.Enabled() {
		return nil
	}
	if !p.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return p.nc.Publish(subject, data)
}

// Close flushes pending events and closes the connection.
func (p *Publisher) Close() {
	if !p.Enabled() {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("failed to drain NATS connection", zap.Error(err))
		p.nc.Close()
	}
	p.log.Info("NATS connection closed")
}
