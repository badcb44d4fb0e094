// Package kafka publishes appended ledger transactions as events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransactionEvent is the message value written for each ledger entry.
type TransactionEvent struct {
	WalletID      string          `json:"walletId"`
	TransactionID string          `json:"transactionId"`
	Type          string          `json:"type"`
	Amount        string          `json:"amount"`
	Balance       string          `json:"balance"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	Metadata      domain.Metadata `json:"metadata,omitempty"`
}

// NewTransactionEvent renders txn with money fixed to two decimals.
func NewTransactionEvent(txn *domain.Transaction) TransactionEvent {
	return TransactionEvent{
		WalletID:      txn.WalletID.String(),
		TransactionID: txn.TransactionID.String(),
		Type:          string(txn.TransactionType),
		Amount:        domain.FormatMoney(txn.Amount),
		Balance:       domain.FormatMoney(txn.Balance),
		Version:       txn.Version,
		CreatedAt:     txn.CreatedAt,
		Metadata:      txn.Metadata,
	}
}

// Publisher implements ports.TransactionPublisher. Messages are keyed by
// wallet id so one wallet's events stay ordered within a partition.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher wraps an existing writer.
func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// NewWriter builds a kafka.Writer for the configured brokers and topic.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

// Publish writes one event for txn.
func (p *Publisher) Publish(ctx context.Context, txn *domain.Transaction) error {
	value, err := json.Marshal(NewTransactionEvent(txn))
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(txn.WalletID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(txn.TransactionType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write transaction event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
