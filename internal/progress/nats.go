package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject progress events are published on.
const DefaultSubject = "ttsr.progress"

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes events as JSON on a NATS subject. Publish failures are
// logged and otherwise ignored so a broker outage never stalls generation.
type NATSSink struct {
	pub     publisher
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NATSConfig configures ConnectNATS.
type NATSConfig struct {
	URL     string
	Subject string
	Timeout time.Duration
}

// ConnectNATS dials the broker and returns a sink publishing on cfg.Subject.
func ConnectNATS(cfg NATSConfig, logger *slog.Logger) (*NATSSink, error) {
	if cfg.URL == "" {
		return nil, errors.New("no NATS url configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("ttsr"),
		nats.Timeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info("connected to NATS", slog.String("url", cfg.URL))

	s := newNATSSink(conn, cfg.Subject, logger)
	s.conn = conn

	return s, nil
}

func newNATSSink(pub publisher, subject string, logger *slog.Logger) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}

	return &NATSSink{
		pub:     pub,
		subject: subject,
		logger:  logger.With("component", "progress-nats"),
	}
}

func (s *NATSSink) Report(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("encode progress event", "error", err)
		return
	}

	err = s.pub.Publish(s.subject, data)
	if err != nil {
		s.logger.Warn("publish progress event", "subject", s.subject, "error", err)
	}
}

// Close drains and closes the connection opened by ConnectNATS.
func (s *NATSSink) Close() {
	if s == nil || s.conn == nil {
		return
	}

	_ = s.conn.Drain()
	s.conn.Close()
}
