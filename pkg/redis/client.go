// Package redis wraps the go-redis client with the small write surface the
// bridge needs: hash writes paired with pub/sub notifications, and list
// pushes for snapshot consumers.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Client represents a Redis client with publish capabilities.
type Client struct {
	client *redis.Client
	ctx    context.Context
}

// New creates a new Redis client and verifies the connection.
func New(addr string, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &Client{
		client: client,
		ctx:    ctx,
	}, nil
}

// WriteString writes a string value to a hash field.
func (c *Client) WriteString(key, field, value string) error {
	return c.client.HSet(c.ctx, key, field, value).Err()
}

// WriteAndPublishString writes a string value and publishes the change.
func (c *Client) WriteAndPublishString(key, field, value string) error {
	pipe := c.client.Pipeline()
	pipe.HSet(c.ctx, key, field, value)
	pipe.Publish(c.ctx, key, fmt.Sprintf("%s:%s", field, value))
	_, err := pipe.Exec(c.ctx)
	return err
}

// WriteAndPublishInt writes an integer value and publishes the change.
func (c *Client) WriteAndPublishInt(key, field string, value int64) error {
	pipe := c.client.Pipeline()
	pipe.HSet(c.ctx, key, field, value)
	pipe.Publish(c.ctx, key, fmt.Sprintf("%s:%d", field, value))
	_, err := pipe.Exec(c.ctx)
	return err
}

// WriteAndPublishFloat writes a float value and publishes the change.
func (c *Client) WriteAndPublishFloat(key, field string, value float64) error {
	rendered := strconv.FormatFloat(value, 'f', -1, 64)
	pipe := c.client.Pipeline()
	pipe.HSet(c.ctx, key, field, rendered)
	pipe.Publish(c.ctx, key, fmt.Sprintf("%s:%s", field, rendered))
	_, err := pipe.Exec(c.ctx)
	return err
}

// LPush performs an LPUSH command on the specified list key.
func (c *Client) LPush(key string, value []byte) error {
	return c.client.LPush(c.ctx, key, value).Err()
}

// Close closes the Redis client connection.
func (c *Client) Close() error {
	return c.client.Close()
}
