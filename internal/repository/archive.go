// Package repository persists finished-game records. The archive is a
// write-side audit trail: live gameplay state never depends on it.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type GameArchive interface {
	Save(ctx context.Context, record *entity.GameRecord) error
	GetByID(ctx context.Context, id string) (*entity.GameRecord, error)
}

type dbArchive struct {
	client *redis.Client
}

func NewGameArchive(client *redis.Client) GameArchive {
	return &dbArchive{
		client: client,
	}
}

func (that *dbArchive) Save(ctx context.Context, record *entity.GameRecord) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal game record: %w", err)
	}

	recordKey := "game:" + record.ID
	if err = that.client.Set(ctx, recordKey, recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set game record: %w", err)
	}

	return nil
}

func (that *dbArchive) GetByID(ctx context.Context, id string) (*entity.GameRecord, error) {
	recordKey := "game:" + id

	response, err := that.client.Get(ctx, recordKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRecordNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game record by ID: %w", err)
	}

	var record entity.GameRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game record: %w", err)
	}

	return &record, nil
}

// NopArchive discards records. Used when no Redis address is configured.
type NopArchive struct{}

func NewNopArchive() *NopArchive {
	return &NopArchive{}
}

func (that *NopArchive) Save(_ context.Context, _ *entity.GameRecord) error {
	return nil
}

func (that *NopArchive) GetByID(_ context.Context, _ string) (*entity.GameRecord, error) {
	return nil, apperror.ErrRecordNotFound
}
