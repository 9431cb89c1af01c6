package ledger

import (
	"context"
	"log/slog"

	"github.com/absmach/coach/pkg/mqtt"
)

type publishingLedger struct {
	Ledger
	pub    mqtt.Publisher
	topic  string
	logger *slog.Logger
}

// WithPublisher republishes every appended row to an MQTT topic. Broker
// failures are logged and never fail the run; the wrapped ledger remains
// the durable record.
func WithPublisher(l Ledger, pub mqtt.Publisher, topic string, logger *slog.Logger) Ledger {
	return &publishingLedger{
		Ledger: l,
		pub:    pub,
		topic:  topic,
		logger: logger,
	}
}

func (l *publishingLedger) Append(row Row) error {
	if err := l.Ledger.Append(row); err != nil {
		return err
	}

	if err := l.pub.Publish(context.Background(), l.topic, row); err != nil {
		l.logger.Warn("failed to publish progress row",
			slog.Int("epoch", row.Epoch),
			slog.String("topic", l.topic),
			slog.Any("error", err))
	}

	return nil
}
