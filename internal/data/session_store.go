package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type sessionRepo struct {
	data *Data
	log  *log.Helper
}

// NewSessionRepo creates the redis-backed session store. Redis expiry is the
// session TTL; no sweeper needed.
func NewSessionRepo(data *Data, logger log.Logger) biz.SessionRepo {
	return &sessionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *sessionRepo) SaveSession(ctx context.Context, session *auth.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := r.data.rdb.Set(ctx, sessionKeyPrefix+session.Token, payload, ttl).Err(); err != nil {
		r.log.Errorf("Failed to save session: %v", err)
		return err
	}
	return nil
}

func (r *sessionRepo) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	payload, err := r.data.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get session: %v", err)
		return nil, err
	}

	var session auth.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) DeleteSession(ctx context.Context, token string) error {
	return r.data.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}
