package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"classroom-notes-go/models"
)

const (
	classroomsKey      = "classrooms" // Set: Stores all classroom IDs
	classroomKeyPrefix = "classroom:" // Hash prefix: classroom:{id} -> stores the note record
)

// RedisService stores classroom notes in Redis
type RedisService struct {
	Client *redis.Client
	now    Clock
	logger *zap.Logger
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client, logger *zap.Logger) *RedisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisService{
		Client: client,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock returns a copy of the service that stamps writes with now.
func (s *RedisService) WithClock(now Clock) *RedisService {
	c := *s
	c.now = now
	return &c
}

// Helper to generate classroom hash key
func getClassroomKey(classroomID string) string {
	return classroomKeyPrefix + classroomID
}

func recordFromHash(classroomID string, data map[string]string) models.NoteRecord {
	if len(data) == 0 {
		return models.NoteRecord{} // Not found
	}
	record := models.NoteRecord{
		ClassroomID: classroomID,
		LastUpdated: data[lastUpdatedAttr],
	}
	if content, ok := data[contentAttr]; ok {
		record.Content = &content
	}
	return record
}

// GetNotes retrieves the record of a classroom
func (s *RedisService) GetNotes(ctx context.Context, classroomID string) (models.NoteRecord, error) {
	data, err := s.Client.HGetAll(ctx, getClassroomKey(classroomID)).Result()
	if err != nil {
		return models.NoteRecord{}, &StoreError{Op: "get", ClassroomID: classroomID, Err: err}
	}
	return recordFromHash(classroomID, data), nil
}

// PutNotes overwrites the record of a classroom, creating it if needed
func (s *RedisService) PutNotes(ctx context.Context, classroomID, content string) error {
	stamp := models.FormatTimestamp(s.now())
	pipe := s.Client.TxPipeline()

	// A single HSET replaces every field, so readers never see a mix of two writes
	pipe.HSet(ctx, getClassroomKey(classroomID), map[string]interface{}{
		classroomIDAttr: classroomID,
		contentAttr:     content,
		lastUpdatedAttr: stamp,
	})
	// Track the classroom for listing
	pipe.SAdd(ctx, classroomsKey, classroomID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &StoreError{Op: "put", ClassroomID: classroomID, Err: err}
	}
	s.logger.Debug("Saved notes",
		zap.String("classroom_id", classroomID),
		zap.String("last_updated", stamp))
	return nil
}

// ListClasses reads every tracked classroom and returns those with content,
// most recently updated first
func (s *RedisService) ListClasses(ctx context.Context) ([]models.NoteRecord, error) {
	classroomIDs, err := s.Client.SMembers(ctx, classroomsKey).Result()
	if err != nil {
		return nil, &StoreError{Op: "list", Err: fmt.Errorf("read classroom ids: %w", err)}
	}
	if len(classroomIDs) == 0 {
		return []models.NoteRecord{}, nil
	}

	pipe := s.Client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(classroomIDs))
	for i, id := range classroomIDs {
		cmds[i] = pipe.HGetAll(ctx, getClassroomKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}

	records := make([]models.NoteRecord, 0, len(classroomIDs))
	for i, cmd := range cmds {
		records = append(records, recordFromHash(classroomIDs[i], cmd.Val()))
	}
	return models.SortByRecency(records), nil
}

// --- Utility ---

// InitializeRedisClient creates a Redis client from a redis:// URL and pings it.
// Commands are attempted once.
func InitializeRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = -1

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return rdb, nil
}
