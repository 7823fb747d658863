package sink

import (
	"context"
	"math/rand/v2"
	"strconv"

	apperrors "sjsage522/catalogscraper/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStreamSink adds each row to a Redis stream as field/value pairs
type RedisStreamSink struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisStreamSink creates a new Redis stream sink
func NewRedisStreamSink(addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) *RedisStreamSink {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisStreamSink{
		client:          client,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}
}

// Name implements Sink
func (s *RedisStreamSink) Name() string {
	return "redis:" + s.streamPrefix
}

// Stream returns the stream name of shard n
func (s *RedisStreamSink) Stream(n int) string {
	return s.streamPrefix + ":" + strconv.Itoa(n)
}

// WriteRows implements Sink. Rows are spread over streamCount streams at random,
// then every stream is trimmed to the configured maximum length.
func (s *RedisStreamSink) WriteRows(ctx context.Context, columns []string, rows []map[string]string) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, row := range rows {
			values := make([]interface{}, 0, len(columns)*2)
			for _, col := range columns {
				values = append(values, col, row[col])
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: s.Stream(rand.IntN(s.streamCount)),
				Values: values,
			})
		}
		return nil
	})
	if err != nil {
		return apperrors.NewSink(s.Name(), "failed to add rows", err)
	}

	if err := s.TrimStreams(ctx); err != nil {
		return apperrors.NewSink(s.Name(), "failed to trim streams", err)
	}
	return nil
}

// TrimStreams trims all streams to the configured maximum length
func (s *RedisStreamSink) TrimStreams(ctx context.Context) error {
	if s.streamMaxLength <= 0 {
		return nil
	}
	for n := 0; n < s.streamCount; n++ {
		if err := s.client.XTrimMaxLen(ctx, s.Stream(n), int64(s.streamMaxLength)).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks that the server is reachable
func (s *RedisStreamSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}
