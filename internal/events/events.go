// Package events publishes servicio lifecycle events after their transaction commits.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"

	"github.com/dipaca/autolavado/internal/config"
	"github.com/dipaca/autolavado/internal/lib/rabbitmq"
	"github.com/dipaca/autolavado/internal/lib/sl"
	"github.com/dipaca/autolavado/internal/models"
)

// Routing keys.
const (
	ServicioCreado     = "servicio.creado"
	ServicioFinalizado = "servicio.finalizado"
)

// ServicioEvent is the message body of both routing keys.
type ServicioEvent struct {
	ServicioID int64           `json:"servicio_id"`
	ClienteID  *int64          `json:"cliente_id"`
	Status     models.Status   `json:"status"`
	Monto      decimal.Decimal `json:"monto"`
	MetodoPago *string         `json:"metodo_pago,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewServicioEvent snapshots sv.
func NewServicioEvent(sv *models.Servicio) ServicioEvent {
	return ServicioEvent{
		ServicioID: sv.ID,
		ClienteID:  sv.ClienteID,
		Status:     sv.Status,
		Monto:      sv.Monto,
		MetodoPago: sv.MetodoPago,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers domain events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Queues are the durable queues bound to the exchange.
func Queues() []rabbitmq.QueueConfig {
	return []rabbitmq.QueueConfig{
		{QueueName: "autolavado.servicio.creado", RoutingKey: ServicioCreado},
		{QueueName: "autolavado.servicio.finalizado", RoutingKey: ServicioFinalizado},
	}
}

// Rabbit publishes events to a RabbitMQ direct exchange.
type Rabbit struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewRabbit connects to the broker and declares the exchange and queues.
func NewRabbit(cfg config.RabbitMQ) (*Rabbit, error) {
	const op = "events.NewRabbit"
	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupExchange(conn, cfg.Exchange, Queues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Rabbit{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

// Publish sends event under routingKey. Safe for concurrent use.
func (r *Rabbit) Publish(ctx context.Context, routingKey string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return rabbitmq.Publish(r.ch, r.exchange, routingKey, event)
}

// Close closes the channel and the connection.
func (r *Rabbit) Close() error {
	const op = "events.Rabbit.Close"
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ch.Close(); err != nil {
		_ = r.conn.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                              { return nil }

// Notify publishes and only logs a failure. The request that produced the
// event has already committed.
func Notify(ctx context.Context, log *slog.Logger, p Publisher, routingKey string, sv *models.Servicio) {
	if err := p.Publish(ctx, routingKey, NewServicioEvent(sv)); err != nil {
		log.Warn("failed to publish event",
			slog.String("routing_key", routingKey),
			slog.Int64("servicio_id", sv.ID),
			sl.Err(err))
	}
}
