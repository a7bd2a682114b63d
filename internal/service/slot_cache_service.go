package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefix for cached slot listings
	RedisSlotKeyPrefix = "slots:"

	// Cache lifetime; short because availability changes on every booking.
	slotCacheTTL = 30 * time.Second
)

// SlotCacheService caches computed slot listings per doctor and date in
// Redis. The cache is a read accelerator only: every booking-path decision
// goes through AvailabilityService.IsFree against the database. Entries for
// a doctor are invalidated on every appointment write for that doctor.
type SlotCacheService struct {
	log         *logrus.Logger
	redisClient *redis.Client
}

func NewSlotCacheService(log *logrus.Logger, redisClient *redis.Client) *SlotCacheService {
	return &SlotCacheService{
		log:         log,
		redisClient: redisClient,
	}
}

// Get returns the cached slot list for the doctor and date, or ok=false on
// miss. Redis faults degrade to a miss.
func (s *SlotCacheService) Get(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]time.Time, bool) {
	payload, err := s.redisClient.Get(ctx, s.key(doctorID, date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnf("Slot cache read failed for doctor %s: %+v", doctorID, err)
		}
		return nil, false
	}

	var slots []time.Time
	if err := json.Unmarshal(payload, &slots); err != nil {
		s.log.Warnf("Slot cache entry corrupt for doctor %s: %+v", doctorID, err)
		return nil, false
	}
	return slots, true
}

// Set stores the slot list for the doctor and date. Failures are non-fatal.
func (s *SlotCacheService) Set(ctx context.Context, doctorID uuid.UUID, date time.Time, slots []time.Time) {
	payload, err := json.Marshal(slots)
	if err != nil {
		s.log.Warnf("Slot cache marshal failed for doctor %s: %+v", doctorID, err)
		return
	}
	if err := s.redisClient.Set(ctx, s.key(doctorID, date), payload, slotCacheTTL).Err(); err != nil {
		s.log.Warnf("Slot cache write failed for doctor %s (non-fatal): %+v", doctorID, err)
	}
}

// Invalidate drops every cached listing for the doctor. Called after any
// appointment write so stale availability is never served past the write.
func (s *SlotCacheService) Invalidate(ctx context.Context, doctorID uuid.UUID) {
	pattern := fmt.Sprintf("%s%s:*", RedisSlotKeyPrefix, doctorID)

	iter := s.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warnf("Slot cache scan failed for doctor %s (non-fatal): %+v", doctorID, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Slot cache invalidation failed for doctor %s (non-fatal): %+v", doctorID, err)
	}
}

func (s *SlotCacheService) key(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", RedisSlotKeyPrefix, doctorID, date.UTC().Format("2006-01-02"))
}
