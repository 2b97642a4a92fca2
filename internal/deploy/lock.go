package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	eflerrors "github.com/endfield-mods/efl/internal/errors"
)

const (
	// LockFileName lives in the data directory.
	LockFileName = "deploy.lock"

	// DefaultLockWait covers a rebuild by a running 'efl mods watch'.
	DefaultLockWait = 3 * time.Second

	lockRetry = 50 * time.Millisecond
)

// LockPath returns the deploy lock file path.
func (d *Deployer) LockPath() string {
	return filepath.Join(d.dataDir, LockFileName)
}

// acquire takes the exclusive deploy lock, retrying for up to d.lockWait
// while another efl process holds it. The returned func releases it.
func (d *Deployer) acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return nil, eflerrors.New(eflerrors.ErrCodeFilePermission, "failed to create data directory", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fl := flock.New(d.LockPath())
	ok, err := fl.TryLock()
	if err == nil && !ok && d.lockWait > 0 {
		d.logger.Debug("deploy lock busy, waiting", "lock", fl.Path(), "wait", d.lockWait)
		waitCtx, cancel := context.WithTimeout(ctx, d.lockWait)
		ok, err = fl.TryLockContext(waitCtx, lockRetry)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		return nil, eflerrors.New(eflerrors.ErrCodeLocked, "failed to lock deploy", err)
	case !ok:
		return nil, eflerrors.New(eflerrors.ErrCodeLocked, "another deploy or restore is running", nil).
			WithDetail("lock", fl.Path())
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			d.logger.Warn("failed to release deploy lock", "error", fmt.Sprint(err))
		}
	}, nil
}
