package data

import (
	"context"
	"errors"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

type identityRepo struct {
	data *Data
	log  *log.Helper
}

// NewIdentityRepo creates the identity repository.
func NewIdentityRepo(data *Data, logger log.Logger) biz.IdentityRepo {
	return &identityRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *identityRepo) GetIdentityByEmail(ctx context.Context, email string) (*biz.Identity, error) {
	var m model.Identity
	err := r.data.DB(ctx).First(&m, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get identity by email: %v", err)
		return nil, err
	}
	return toIdentityEntity(&m), nil
}

func (r *identityRepo) GetIdentityByID(ctx context.Context, id string) (*biz.Identity, error) {
	var m model.Identity
	err := r.data.DB(ctx).First(&m, "identity_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get identity %s: %v", id, err)
		return nil, err
	}
	return toIdentityEntity(&m), nil
}

func (r *identityRepo) CreateIdentity(ctx context.Context, identity *biz.Identity) error {
	m := &model.Identity{
		ID:            identity.ID,
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
		PasswordHash:  identity.PasswordHash,
		CreatedAt:     identity.CreatedAt,
		UpdatedAt:     identity.UpdatedAt,
	}
	if err := r.data.DB(ctx).Create(m).Error; err != nil {
		r.log.Errorf("Failed to create identity %s: %v", identity.ID, err)
		return err
	}
	return nil
}

func toIdentityEntity(m *model.Identity) *biz.Identity {
	return &biz.Identity{
		ID:            m.ID,
		Email:         m.Email,
		EmailVerified: m.EmailVerified,
		PasswordHash:  m.PasswordHash,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
