package service

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newLockService(t *testing.T) *DoctorLockService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewDoctorLockService(log)
	t.Cleanup(svc.Stop)
	return svc
}

func TestDoctorLockSerializesSameDoctor(t *testing.T) {
	svc := newLockService(t)
	doctorID := uuid.New()

	const workers = 16
	var inSection, maxInSection int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.Lock(doctorID)
			defer unlock()

			mu.Lock()
			inSection++
			if inSection > maxInSection {
				maxInSection = inSection
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInSection)
}

func TestDoctorLockDistinctDoctorsRunInParallel(t *testing.T) {
	svc := newLockService(t)

	first := uuid.New()
	second := uuid.New()

	// Hold the first doctor's lock; the second doctor's lock must still be
	// acquirable without waiting for it.
	unlockFirst := svc.Lock(first)
	defer unlockFirst()

	done := make(chan struct{})
	go func() {
		unlock := svc.Lock(second)
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a distinct doctor blocked")
	}
}

func TestDoctorLockUnlockReleases(t *testing.T) {
	svc := newLockService(t)
	doctorID := uuid.New()

	unlock := svc.Lock(doctorID)
	unlock()

	done := make(chan struct{})
	go func() {
		again := svc.Lock(doctorID)
		again()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock was not released by unlock")
	}
}

func TestDoctorLockStopIsIdempotent(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewDoctorLockService(log)

	svc.Stop()
	assert.NotPanics(t, svc.Stop)
}
