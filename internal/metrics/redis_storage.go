package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DataPoint represents a single time-series data point.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// RedisStorage provides Redis-backed persistence for metrics history.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage creates a new Redis storage backend.
// Returns an error if the connection fails.
func NewRedisStorage(url string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStorage{
		client: client,
		prefix: "trueboard:metrics:",
		ttl:    24 * time.Hour,
	}, nil
}

// SaveDataPoint saves a single data point. Sorted sets keyed by
// timestamp allow efficient range queries and retention trimming.
func (rs *RedisStorage) SaveDataPoint(ctx context.Context, metric string, dp DataPoint) error {
	key := rs.prefix + metric

	pipe := rs.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(dp.Timestamp.Unix()),
		Member: fmt.Sprintf("%d:%.2f", dp.Timestamp.UnixNano(), dp.Value),
	})

	// Trim data points older than the retention window
	minScore := time.Now().Add(-rs.ttl).Unix()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", minScore))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving data point: %w", err)
	}

	return nil
}

// LoadHistory loads historical data points since the given time.
func (rs *RedisStorage) LoadHistory(ctx context.Context, metric string, since time.Time) ([]DataPoint, error) {
	key := rs.prefix + metric

	results, err := rs.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", since.Unix()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	dataPoints := make([]DataPoint, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		value, err := parseMemberValue(member)
		if err != nil {
			continue // Skip invalid entries
		}
		dataPoints = append(dataPoints, DataPoint{
			Timestamp: time.Unix(int64(z.Score), 0),
			Value:     value,
		})
	}

	return dataPoints, nil
}

// parseMemberValue extracts the value from a "<nanos>:<value>" member.
func parseMemberValue(member string) (float64, error) {
	for i := 0; i < len(member); i++ {
		if member[i] == ':' {
			return strconv.ParseFloat(member[i+1:], 64)
		}
	}
	return strconv.ParseFloat(member, 64)
}

// DeleteMetric deletes all data for a specific metric.
func (rs *RedisStorage) DeleteMetric(ctx context.Context, metric string) error {
	if err := rs.client.Del(ctx, rs.prefix+metric).Err(); err != nil {
		return fmt.Errorf("deleting metric: %w", err)
	}
	return nil
}

// SetTTL sets the retention window for data points.
func (rs *RedisStorage) SetTTL(ttl time.Duration) {
	rs.ttl = ttl
}

// Close closes the Redis connection.
func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}
