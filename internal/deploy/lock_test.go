package deploy

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
)

func holdLock(t *testing.T, d *Deployer) *flock.Flock {
	t.Helper()
	require.NoError(t, os.MkdirAll(d.dataDir, 0o755))
	fl := flock.New(d.LockPath())
	ok, err := fl.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = fl.Unlock() })
	return fl
}

func TestAcquire_ReleaseAllowsNextHolder(t *testing.T) {
	// Given: a deployer that takes and releases the lock
	f := newFixture(t)
	release, err := f.d.acquire(context.Background())
	require.NoError(t, err)
	release()

	// When: another holder tries the same file
	ok, err := flock.New(f.d.LockPath()).TryLock()

	// Then: it succeeds
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquire_Busy_NoWait(t *testing.T) {
	// Given: the lock held elsewhere and no wait configured
	f := newFixture(t)
	holdLock(t, f.d)

	// When: acquiring
	start := time.Now()
	_, err := f.d.acquire(context.Background())

	// Then: it fails at once with the lock code and path
	require.Error(t, err)
	assert.Equal(t, eflerrors.ErrCodeLocked, eflerrors.GetCode(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	// Given: a lock released shortly after the deployer starts waiting
	f := newFixture(t)
	f.d.lockWait = 2 * time.Second
	held := holdLock(t, f.d)
	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = held.Unlock()
	}()

	// When: acquiring
	release, err := f.d.acquire(context.Background())

	// Then: the deployer gets the lock once it is free
	require.NoError(t, err)
	release()
}

func TestAcquire_WaitTimesOut(t *testing.T) {
	f := newFixture(t)
	f.d.lockWait = 100 * time.Millisecond
	holdLock(t, f.d)

	_, err := f.d.acquire(context.Background())

	assert.Equal(t, eflerrors.ErrCodeLocked, eflerrors.GetCode(err))
}
