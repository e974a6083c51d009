package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

const (
	pinKeyPrefix         = "vox:pinned:"       // Pinned set per user: vox:pinned:{user_id}
	conduitChannelPrefix = "vox:conduit:"      // Pub/Sub channel for conduit entries: vox:conduit:{user_id}
	pinEventChannel      = "vox:pins"          // Pub/Sub channel announcing pinned-set changes
	pinTTL               = 90 * 24 * time.Hour // Pinned sets expire after 90 idle days
)

// PinRepository handles Redis operations for pinned sets and conduit fan-out
type PinRepository struct {
	client *redis.Client
}

// NewPinRepository creates a new PinRepository
func NewPinRepository(client *redis.Client) *PinRepository {
	return &PinRepository{client: client}
}

// Load returns the user's pinned set; a missing key is an empty set.
func (r *PinRepository) Load(ctx context.Context, userID string) ([]domain.Resource, error) {
	data, err := r.client.Get(ctx, r.pinKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return []domain.Resource{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pinned set: %w", err)
	}

	var pins []domain.Resource
	if err := json.Unmarshal([]byte(data), &pins); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pinned set: %w", err)
	}
	return pins, nil
}

// Save replaces the user's pinned set and announces the change.
func (r *PinRepository) Save(ctx context.Context, userID string, pins []domain.Resource) error {
	if pins == nil {
		pins = []domain.Resource{}
	}
	data, err := json.Marshal(pins)
	if err != nil {
		return fmt.Errorf("failed to marshal pinned set: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.pinKey(userID), data, pinTTL)
	pipe.Publish(ctx, pinEventChannel, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save pinned set: %w", err)
	}
	return nil
}

// PublishEntry fans a conduit entry out to other listeners of the user's desk.
func (r *PinRepository) PublishEntry(ctx context.Context, userID string, e workspace.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal conduit entry: %w", err)
	}
	return r.client.Publish(ctx, ConduitChannel(userID), data).Err()
}

// ConduitChannel is the Pub/Sub channel carrying a user's conduit entries.
func ConduitChannel(userID string) string {
	return conduitChannelPrefix + userID
}

func (r *PinRepository) pinKey(userID string) string {
	return pinKeyPrefix + userID
}
