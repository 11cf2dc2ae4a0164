package curve

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fcashlabs/curve-engine/internal/storage"
	"github.com/fcashlabs/curve-engine/pkg/logger"
)

// SyncManager coordinates curve state across pods sharing one Redis. One
// leader publishes the snapshot backup and bumps the data version;
// followers restore their local store whenever the version advances.
type SyncManager struct {
	redis        *storage.RedisStore
	store        storage.Store
	podID        string
	isLeader     bool
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	syncInterval time.Duration
	lockTTL      time.Duration
	opts         *ServiceOptions
	log          *logrus.Entry
	started      bool
	startMu      sync.Mutex
	// Last snapshot version applied to the local store
	appliedVersion int
	versionMu      sync.RWMutex
}

// NewSyncManager creates a sync manager over the shared Redis store.
func NewSyncManager(redis *storage.RedisStore, store storage.Store, opts *ServiceOptions) *SyncManager {
	// Pod ID must survive hostname collisions across restarts
	hostname, _ := os.Hostname()
	podID := fmt.Sprintf("%s-%d-%d", hostname, os.Getpid(), time.Now().UnixNano())

	ctx, cancel := context.WithCancel(context.Background())

	lockTTL := opts.LeaderLockTTL
	if lockTTL == 0 {
		lockTTL = 30 * time.Second
	}

	return &SyncManager{
		redis:        redis,
		store:        store,
		podID:        podID,
		syncInterval: 5 * time.Second,
		lockTTL:      lockTTL,
		opts:         opts,
		log:          logger.WithComponent("curve-sync"),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins leader election and follower sync.
func (sm *SyncManager) Start() error {
	sm.startMu.Lock()
	defer sm.startMu.Unlock()

	if sm.started {
		return fmt.Errorf("sync manager already started")
	}

	sm.logf("starting sync manager (pod id: %s)", sm.podID)

	sm.wg.Add(1)
	go sm.mainLoop()

	sm.started = true
	return nil
}

// Stop gracefully shuts down the sync manager.
func (sm *SyncManager) Stop() {
	sm.cancel()

	done := make(chan struct{})
	go func() {
		sm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		sm.warnf("timeout waiting for sync goroutines to stop")
	}

	sm.mu.Lock()
	wasLeader := sm.isLeader
	sm.mu.Unlock()

	if wasLeader {
		if err := sm.redis.ReleaseLeaderLock(sm.podID); err != nil {
			sm.warnf("failed to release leader lock: %v", err)
		}
	}

	sm.logf("sync manager stopped")
}

// IsLeader returns whether this pod currently holds the leader lock.
func (sm *SyncManager) IsLeader() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isLeader
}

// PodID returns the unique pod identifier.
func (sm *SyncManager) PodID() string {
	return sm.podID
}

func (sm *SyncManager) mainLoop() {
	defer sm.wg.Done()

	leaderTicker := time.NewTicker(sm.lockTTL / 2)
	defer leaderTicker.Stop()

	syncTicker := time.NewTicker(sm.syncInterval)
	defer syncTicker.Stop()

	// Initial sync and election
	sm.syncFromRedis()
	sm.performLeaderElection()

	for {
		select {
		case <-sm.ctx.Done():
			return
		case <-leaderTicker.C:
			sm.performLeaderElection()
		case <-syncTicker.C:
			// Leaders publish; only followers pull
			if !sm.IsLeader() && sm.needsSync() {
				sm.syncFromRedis()
			}
		}
	}
}

func (sm *SyncManager) performLeaderElection() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.isLeader {
		renewed, err := sm.redis.RenewLeadership(sm.podID, sm.lockTTL)
		if err != nil {
			sm.warnf("failed to renew leadership: %v", err)
			sm.isLeader = false
			return
		}
		if !renewed {
			sm.logf("leadership lost, becoming follower")
			sm.isLeader = false
		}
		return
	}

	acquired, err := sm.redis.AcquireLeaderLock(sm.podID, sm.lockTTL)
	if err != nil {
		sm.warnf("failed to acquire leadership: %v", err)
		return
	}
	if acquired {
		sm.logf("became leader")
		sm.isLeader = true
	}
}

// PublishVersion publishes a snapshot of the local store and bumps the
// shared data version. Called by the service after the leader writes.
func (sm *SyncManager) PublishVersion() error {
	snapshot, err := TakeSnapshot(sm.store)
	if err != nil {
		return err
	}
	if err := sm.redis.SetSnapshotBackup(snapshot); err != nil {
		return err
	}
	version := &storage.DataVersion{
		SnapshotVersion: snapshot.Version,
		LastUpdated:     time.Now().UTC(),
		LastUpdatedBy:   sm.podID,
	}
	if err := sm.redis.SetDataVersion(version); err != nil {
		return err
	}

	sm.versionMu.Lock()
	sm.appliedVersion = snapshot.Version
	sm.versionMu.Unlock()

	sm.logf("published snapshot version %d", snapshot.Version)
	return nil
}

func (sm *SyncManager) needsSync() bool {
	version, err := sm.redis.GetDataVersion()
	if err != nil {
		sm.warnf("failed to read data version: %v", err)
		return false
	}
	if version == nil {
		return false
	}

	sm.versionMu.RLock()
	applied := sm.appliedVersion
	sm.versionMu.RUnlock()

	return version.SnapshotVersion > applied
}

func (sm *SyncManager) syncFromRedis() {
	snapshot, err := sm.redis.GetSnapshotBackup()
	if err != nil {
		sm.warnf("failed to load snapshot from Redis: %v", err)
		return
	}
	if snapshot == nil {
		return
	}

	if err := RestoreSnapshot(sm.store, snapshot); err != nil {
		sm.warnf("failed to restore snapshot: %v", err)
		return
	}

	sm.versionMu.Lock()
	sm.appliedVersion = snapshot.Version
	sm.versionMu.Unlock()

	sm.logf("synced local store to snapshot version %d", snapshot.Version)
}

func (sm *SyncManager) logf(format string, args ...interface{}) {
	if sm.opts.EnableLogging {
		sm.log.Infof(format, args...)
	}
}

func (sm *SyncManager) warnf(format string, args ...interface{}) {
	if sm.opts.EnableLogging {
		sm.log.Warnf(format, args...)
	}
}
