// Package redisstream publica los eventos confirmados de unidades en un Redis Stream.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain/entity"
	"github.com/jhoicas/Custodia-api/pkg/config"
)

var _ ledger.Publisher = (*Publisher)(nil)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Publisher XADD de un mensaje por evento; los eventos de una operación van en un solo MULTI.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewPublisher maxLen <= 0 no recorta el stream; el recorte es aproximado (MAXLEN ~).
func NewPublisher(client *redis.Client, stream string, maxLen int64) *Publisher {
	return &Publisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish agrega los eventos al stream en orden.
func (p *Publisher) Publish(ctx context.Context, events []*entity.UnitEvent) error {
	if len(events) == 0 {
		return nil
	}
	values := make([]map[string]interface{}, 0, len(events))
	for _, e := range events {
		v, err := Values(e)
		if err != nil {
			return err
		}
		values = append(values, v)
	}
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range values {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: p.stream,
				MaxLen: p.maxLen,
				Approx: true,
				Values: v,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// Values campos planos del mensaje; snapshots como JSON.
func Values(e *entity.UnitEvent) (map[string]interface{}, error) {
	before, err := json.Marshal(e.Before)
	if err != nil {
		return nil, fmt.Errorf("codificar before: %w", err)
	}
	after, err := json.Marshal(e.After)
	if err != nil {
		return nil, fmt.Errorf("codificar after: %w", err)
	}
	return map[string]interface{}{
		"event_id":      e.ID,
		"unit_id":       e.UnitID,
		"seq":           strconv.FormatInt(e.Seq, 10),
		"event_type":    e.Type,
		"actor":         e.Actor,
		"reason":        e.Reason,
		"transfer_id":   e.TransferID,
		"batch_id":      e.BatchID,
		"from_location": e.FromLocation,
		"to_location":   e.ToLocation,
		"before":        string(before),
		"after":         string(after),
		"timestamp":     e.Timestamp.UTC().Format(time.RFC3339Nano),
	}, nil
}
