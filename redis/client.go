package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "djelia_history:"

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Entry is one completed gateway operation.
type Entry struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

type PaginatedEntries struct {
	Entries    []Entry `json:"entries"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}

func NewClient(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	client := &Client{rdb: rdb, ttl: ttl}

	if err := client.Ping(ctx); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}

	log.Info().
		Str("addr", addr).
		Int("db", db).
		Dur("ttl", ttl).
		Msg("Redis connected successfully")

	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// AddEntry appends an entry to the user's history and refreshes its TTL.
// ID and Timestamp are filled in when empty.
func (c *Client) AddEntry(ctx context.Context, userID string, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return entry, err
	}

	key := historyKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.RPush(ctx, key, entryJSON)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return entry, fmt.Errorf("add history entry: %w", err)
	}

	return entry, nil
}

func (c *Client) GetHistory(ctx context.Context, userID string) ([]Entry, error) {
	values, err := c.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(values))
	for _, value := range values {
		var entry Entry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Skipping unreadable history entry")
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// GetHistoryPaginated returns one page of the user's history, oldest first.
// Pages start at 1.
func (c *Client) GetHistoryPaginated(ctx context.Context, userID string, page, pageSize int) (PaginatedEntries, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	entries, err := c.GetHistory(ctx, userID)
	if err != nil {
		return PaginatedEntries{}, err
	}

	total := len(entries)
	result := PaginatedEntries{
		Entries:    []Entry{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return result, nil
	}
	end := min(start+pageSize, total)
	result.Entries = entries[start:end]

	return result, nil
}

func (c *Client) ClearHistory(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, historyKey(userID)).Err()
}

// ActiveUsers returns the ids of all users with a stored history.
func (c *Client) ActiveUsers(ctx context.Context) ([]string, error) {
	var userIDs []string
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		userIDs = append(userIDs, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return userIDs, nil
}

func historyKey(userID string) string {
	return keyPrefix + userID
}
