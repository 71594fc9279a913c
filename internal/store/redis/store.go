package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
)

// Store is the remote document collection of tools.
// Documents are JSON records under ToolKey(id); AllToolsKey indexes the IDs.
type Store struct {
	client *redis.Client
	newID  func() string
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		newID:  uuid.NewString,
	}
}

func storeErr(op, id string, err error) error {
	return &domain.StoreError{Op: op, ID: id, Err: err}
}

// Create persists a record and returns the ID assigned to it.
func (s *Store) Create(ctx context.Context, rec domain.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", storeErr("create", "", fmt.Errorf("failed to marshal tool: %w", err))
	}

	id := s.newID()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ToolKey(id), data, 0)
		pipe.ZAdd(ctx, AllToolsKey(), redis.Z{
			Score:  float64(rec.DateAdded.UnixMilli()),
			Member: id,
		})
		return nil
	})
	if err != nil {
		return "", storeErr("create", "", fmt.Errorf("failed to save tool: %w", err))
	}

	return id, nil
}

// ListAll returns every stored tool, oldest first.
// Documents that vanished or no longer decode are skipped.
func (s *Store) ListAll(ctx context.Context) ([]*domain.Tool, error) {
	ids, err := s.client.ZRange(ctx, AllToolsKey(), 0, -1).Result()
	if err != nil {
		return nil, storeErr("list", "", fmt.Errorf("failed to get tool IDs: %w", err))
	}

	if len(ids) == 0 {
		return []*domain.Tool{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, ToolKey(id))
	}
	// redis.Nil from individual GETs surfaces here too; checked per command below
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, storeErr("list", "", fmt.Errorf("failed to get tools: %w", err))
	}

	tools := make([]*domain.Tool, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		tools = append(tools, domain.FromRecord(ids[i], rec))
	}

	return tools, nil
}

// Delete removes a tool. Deleting an unknown ID succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, ToolKey(id))
		pipe.ZRem(ctx, AllToolsKey(), id)
		return nil
	})
	if err != nil {
		return storeErr("delete", id, fmt.Errorf("failed to delete tool: %w", err))
	}
	return nil
}

// Update overwrites an existing tool document.
// It never creates one: an unknown ID yields domain.ErrNotFound.
func (s *Store) Update(ctx context.Context, tool *domain.Tool) error {
	data, err := json.Marshal(tool.Record())
	if err != nil {
		return storeErr("update", tool.ID, fmt.Errorf("failed to marshal tool: %w", err))
	}

	ok, err := s.client.SetXX(ctx, ToolKey(tool.ID), data, 0).Result()
	if errors.Is(err, redis.Nil) {
		ok, err = false, nil
	}
	if err != nil {
		return storeErr("update", tool.ID, fmt.Errorf("failed to update tool: %w", err))
	}
	if !ok {
		return storeErr("update", tool.ID, domain.ErrNotFound)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
