package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test-tasks.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookshare-tasks.db"), DBPath(filepath.Join("data", "bookshare.db")))
	assert.Equal(t, "library-tasks", DBPath("library"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(tasksDBPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")
	assert.NoError(t, client.Ping(context.Background()))

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopWithoutStart(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type fakeOrphanCleaner struct {
	deleted int64
	err     error
	calls   chan struct{}
}

func (f *fakeOrphanCleaner) DeleteOrphans(ctx context.Context) (int64, error) {
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	return f.deleted, f.err
}

func TestEnqueueOrphanCleanup(t *testing.T) {
	client := newTestClient(t)

	cleaner := &fakeOrphanCleaner{deleted: 2, calls: make(chan struct{}, 1)}
	client.Register(NewCleanupOrphanBooksQueue(cleaner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(ctx, CleanupOrphanBooksTask{RequestedBy: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-cleaner.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}

	assert.Eventually(t, func() bool {
		status, err := client.Status(ctx, id)
		return err == nil && status == backlite.TaskStatusSuccess
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStatusUnknownTask(t *testing.T) {
	client := newTestClient(t)

	status, err := client.Status(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, "not_found", StatusString(status))
}

func TestCleanupOrphanBooksProcessor(t *testing.T) {
	ctx := context.Background()

	err := CleanupOrphanBooksProcessor(&fakeOrphanCleaner{deleted: 3})(ctx, CleanupOrphanBooksTask{})
	assert.NoError(t, err)

	err = CleanupOrphanBooksProcessor(&fakeOrphanCleaner{err: errors.New("boom")})(ctx, CleanupOrphanBooksTask{})
	assert.ErrorContains(t, err, "boom")

	err = CleanupOrphanBooksProcessor(nil)(ctx, CleanupOrphanBooksTask{RequestedBy: 1})
	assert.ErrorIs(t, err, errNoCleaner)
}

type fakeAuditCleaner struct {
	retention time.Duration
}

func (f *fakeAuditCleaner) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 0, nil
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeAuditCleaner{}
	process := CleanupAuditEventsProcessor(cleaner)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, DefaultAuditRetentionDays*24*time.Hour, cleaner.retention)
}

func TestTaskConfigs(t *testing.T) {
	orphans := CleanupOrphanBooksTask{}.Config()
	assert.Equal(t, QueueCleanupOrphanBooks, orphans.Name)
	assert.Equal(t, 3, orphans.MaxAttempts)
	require.NotNil(t, orphans.Retention)
	assert.Equal(t, 24*time.Hour, orphans.Retention.Duration)
	require.NotNil(t, orphans.Retention.Data)
	assert.True(t, orphans.Retention.Data.OnlyFailed)

	audit := CleanupAuditEventsTask{}.Config()
	assert.Equal(t, QueueCleanupAuditEvents, audit.Name)
	assert.Equal(t, 2*time.Minute, audit.Timeout)
	assert.Equal(t, 5*time.Minute, audit.Backoff)
}

func TestCleanupAuditEventsTask_Retention(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, CleanupAuditEventsTask{RetentionDays: 7}.Retention())
	assert.Equal(t, 30*24*time.Hour, CleanupAuditEventsTask{}.Retention())
	assert.Equal(t, 30*24*time.Hour, CleanupAuditEventsTask{RetentionDays: -1}.Retention())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.Tasks{Workers: 4})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
}
