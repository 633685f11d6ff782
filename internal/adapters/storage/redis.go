package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"github.com/realrushil/website/internal/core/domain"
)

// Logical keys. Documents written by the original JavaScript sink under the
// same keys are still readable; see decodeReading.
const (
	KeyLatest  = "probe:latest"
	KeyHistory = "probe:history"
	KeyStats   = "probe:stats"
)

// recordScript applies one reading server-side: latest, capped history and
// the stats aggregate change together and concurrent writers never conflict.
//
// KEYS: latest, history, stats
// ARGV: reading JSON, server timestamp, device id, ssid counts JSON, history cap
var recordScript = redis.NewScript(`
local stats = {}
local raw = redis.call('GET', KEYS[3])
if raw then
  local ok, decoded = pcall(cjson.decode, raw)
  if ok and type(decoded) == 'table' then
    stats = decoded
  end
end
if type(stats.deviceInfo) ~= 'table' then
  stats.deviceInfo = {}
end

stats.totalRequests = (tonumber(stats.totalRequests) or 0) + 1
stats.lastUpdate = ARGV[2]
stats.deviceInfo[ARGV[3]] = {lastSeen = ARGV[2], lastData = cjson.decode(ARGV[4])}

-- some cjson builds encode an empty table as an array
for _, info in pairs(stats.deviceInfo) do
  if type(info) == 'table' and type(info.lastData) == 'table' and next(info.lastData) == nil then
    info.lastData = nil
  end
end

redis.call('SET', KEYS[1], ARGV[1])
redis.call('LPUSH', KEYS[2], ARGV[1])
redis.call('LTRIM', KEYS[2], 0, tonumber(ARGV[5]) - 1)
redis.call('SET', KEYS[3], cjson.encode(stats))
return stats.totalRequests
`)

// RedisRepository stores the probe state under three keys and applies every
// record atomically in a Lua script.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository wraps an existing client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// OpenRedis parses a redis:// URL and connects.
func OpenRedis(url string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisRepository(redis.NewClient(opts)), nil
}

func (r *RedisRepository) Name() string { return BackendRedis }

func (r *RedisRepository) Record(ctx context.Context, reading domain.Reading, historyCap int) error {
	if historyCap <= 0 {
		historyCap = domain.DefaultHistoryCap
	}
	encoded, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	counts := reading.SSIDCounts
	if counts == nil {
		counts = domain.SSIDCounts{}
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("encode ssid counts: %w", err)
	}

	err = recordScript.Run(ctx, r.client,
		[]string{KeyLatest, KeyHistory, KeyStats},
		string(encoded), reading.ServerTimestamp, reading.DeviceID, string(countsJSON), historyCap,
	).Err()
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

func (r *RedisRepository) Snapshot(ctx context.Context, historyLimit int) (domain.Snapshot, error) {
	var (
		latestCmd  *redis.StringCmd
		historyCmd *redis.StringSliceCmd
		statsCmd   *redis.StringCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		latestCmd = pipe.Get(ctx, KeyLatest)
		if historyLimit > 0 {
			historyCmd = pipe.LRange(ctx, KeyHistory, 0, int64(historyLimit-1))
		}
		statsCmd = pipe.Get(ctx, KeyStats)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.EmptySnapshot(), err
	}

	snap := domain.EmptySnapshot()
	if snap.Latest, err = decodeLatest(latestCmd); err != nil {
		return domain.EmptySnapshot(), err
	}
	if historyCmd != nil {
		if snap.History, err = decodeHistory(historyCmd); err != nil {
			return domain.EmptySnapshot(), err
		}
	}
	if snap.Stats, err = decodeStats(statsCmd); err != nil {
		return domain.EmptySnapshot(), err
	}
	return snap, nil
}

func (r *RedisRepository) Latest(ctx context.Context) (*domain.Reading, error) {
	return decodeLatest(r.client.Get(ctx, KeyLatest))
}

func (r *RedisRepository) History(ctx context.Context, limit int) ([]domain.Reading, error) {
	if limit <= 0 {
		return []domain.Reading{}, nil
	}
	return decodeHistory(r.client.LRange(ctx, KeyHistory, 0, int64(limit-1)))
}

func (r *RedisRepository) Stats(ctx context.Context) (domain.Stats, error) {
	return decodeStats(r.client.Get(ctx, KeyStats))
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// legacyReading is the document the JavaScript sink wrote: counts live
// under "data".
type legacyReading struct {
	domain.Reading
	Data domain.SSIDCounts `json:"data"`
}

func decodeReading(raw []byte) (domain.Reading, error) {
	var doc legacyReading
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Reading{}, err
	}
	reading := doc.Reading
	if len(reading.SSIDCounts) == 0 && len(doc.Data) > 0 {
		reading.SSIDCounts = doc.Data
	}
	return reading, nil
}

func decodeLatest(cmd *redis.StringCmd) (*domain.Reading, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	reading, err := decodeReading(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyLatest, err)
	}
	return &reading, nil
}

func decodeHistory(cmd *redis.StringSliceCmd) ([]domain.Reading, error) {
	items, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return []domain.Reading{}, nil
	}
	if err != nil {
		return []domain.Reading{}, err
	}
	out := make([]domain.Reading, 0, len(items))
	for _, item := range items {
		reading, err := decodeReading([]byte(item))
		if err != nil {
			continue // skip corrupt entries
		}
		out = append(out, reading)
	}
	return out, nil
}

func decodeStats(cmd *redis.StringCmd) (domain.Stats, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewStats(), nil
	}
	if err != nil {
		return domain.NewStats(), err
	}
	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return domain.NewStats(), fmt.Errorf("decode %s: %w", KeyStats, err)
	}
	return stats.Normalize(), nil
}
