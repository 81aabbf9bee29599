package data

import (
	"context"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
)

type publishLocker struct {
	rs  *redsync.Redsync
	log *log.Helper
}

// NewPublishLocker creates the redsync-backed per-identity publish mutex.
func NewPublishLocker(rs *redsync.Redsync, logger log.Logger) biz.PublishLocker {
	return &publishLocker{
		rs:  rs,
		log: log.NewHelper(logger),
	}
}

func (l *publishLocker) LockPublish(ctx context.Context, identityID string) (func(), error) {
	mutex := l.rs.NewMutex(
		"memorial:publish:"+identityID,
		redsync.WithExpiry(constants.PublishLockExpiration),
		redsync.WithTries(constants.PublishLockRetries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			l.log.Warnf("Failed to unlock publish mutex for %s: %v", identityID, err)
		}
	}, nil
}
