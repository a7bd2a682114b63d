package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	lockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// DoctorLockService serializes the availability-check-then-write section per
// doctor. Operations on distinct doctors proceed in parallel; operations on
// the same doctor take turns, so for two racing bookings with overlapping
// conflict windows exactly one observes the slot as free.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire doctor mutex FIRST
// 2. Then perform DB operations
type DoctorLockService struct {
	log *logrus.Logger

	// Per-doctor mutex
	doctorMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewDoctorLockService creates a new DoctorLockService.
// Starts background goroutine for mutex cleanup.
// Call Stop() during graceful shutdown.
func NewDoctorLockService(log *logrus.Logger) *DoctorLockService {
	svc := &DoctorLockService{
		log:      log,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *DoctorLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("DoctorLockService stopped")
	}
}

// Lock acquires the doctor's exclusive critical section and returns the
// unlock function. Typical use:
//
//	unlock := locks.Lock(doctorID)
//	defer unlock()
func (s *DoctorLockService) Lock(doctorID uuid.UUID) func() {
	mt := s.getDoctorMutex(doctorID)
	mt.mu.Lock()
	return func() {
		mt.lastUsed.Store(time.Now().Unix())
		mt.mu.Unlock()
	}
}

// getDoctorMutex returns the mutex for a specific doctor ID
func (s *DoctorLockService) getDoctorMutex(doctorID uuid.UUID) *mutexWithTimestamp {
	mt, _ := s.doctorMu.LoadOrStore(doctorID, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *DoctorLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Doctor lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety.
// The lastUsed check happens inside the lock so a concurrent Lock cannot
// slip between check and delete.
func (s *DoctorLockService) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-lockStaleThreshold).Unix()
	var cleaned int

	s.doctorMu.Range(func(key, value any) bool {
		doctorID, ok := key.(uuid.UUID)
		if !ok {
			return true
		}

		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.doctorMu.Delete(doctorID)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale doctor mutexes", cleaned)
	}
}
