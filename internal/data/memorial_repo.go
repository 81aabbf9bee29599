package data

import (
	"context"
	"errors"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/data/model"
	bizErrors "everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

type memorialRepo struct {
	data *Data
	log  *log.Helper
}

// NewMemorialRepo creates the memorial repository.
func NewMemorialRepo(data *Data, logger log.Logger) biz.MemorialRepo {
	return &memorialRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *memorialRepo) CreateMemorial(ctx context.Context, m *biz.Memorial) error {
	err := r.data.DB(ctx).Create(toMemorialModel(m)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return bizErrors.ErrSlugTaken()
	}
	if err != nil {
		r.log.Errorf("Failed to create memorial %s: %v", m.ID, err)
		return err
	}
	return nil
}

func (r *memorialRepo) GetMemorial(ctx context.Context, id string) (*biz.Memorial, error) {
	var m model.Memorial
	err := r.data.DB(ctx).First(&m, "memorial_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get memorial %s: %v", id, err)
		return nil, err
	}
	return r.loadChildren(ctx, toMemorialEntity(&m))
}

func (r *memorialRepo) GetMemorialBySlug(ctx context.Context, slug string) (*biz.Memorial, error) {
	var m model.Memorial
	err := r.data.DB(ctx).First(&m, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get memorial by slug %s: %v", slug, err)
		return nil, err
	}
	return r.loadChildren(ctx, toMemorialEntity(&m))
}

func (r *memorialRepo) ListMemorials(ctx context.Context, ownerID string) ([]*biz.Memorial, error) {
	var rows []model.Memorial
	err := r.data.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		r.log.Errorf("Failed to list memorials for %s: %v", ownerID, err)
		return nil, err
	}
	out := make([]*biz.Memorial, len(rows))
	for i := range rows {
		out[i] = toMemorialEntity(&rows[i])
	}
	return out, nil
}

func (r *memorialRepo) SaveMemorial(ctx context.Context, m *biz.Memorial) error {
	err := r.data.DB(ctx).Save(toMemorialModel(m)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return bizErrors.ErrSlugTaken()
	}
	if err != nil {
		r.log.Errorf("Failed to save memorial %s: %v", m.ID, err)
		return err
	}
	return nil
}

// ReplaceGallery deletes the memorial's gallery rows and reinserts the
// submitted set. Callers wrap this in a transaction with the parent save.
func (r *memorialRepo) ReplaceGallery(ctx context.Context, memorialID string, items []*biz.GalleryItem) error {
	db := r.data.DB(ctx)
	if err := db.Where("memorial_id = ?", memorialID).Delete(&model.GalleryItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([]model.GalleryItem, len(items))
	for i, item := range items {
		rows[i] = model.GalleryItem{
			MemorialID: memorialID,
			URL:        item.URL,
			AltText:    item.AltText,
			Position:   item.Position,
		}
	}
	return db.Create(&rows).Error
}

// ReplaceFamily has the same full-replace semantics as ReplaceGallery.
func (r *memorialRepo) ReplaceFamily(ctx context.Context, memorialID string, members []*biz.FamilyMember) error {
	db := r.data.DB(ctx)
	if err := db.Where("memorial_id = ?", memorialID).Delete(&model.FamilyMember{}).Error; err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	rows := make([]model.FamilyMember, len(members))
	for i, member := range members {
		rows[i] = model.FamilyMember{
			MemorialID:   memorialID,
			Name:         member.Name,
			Relationship: member.Relationship,
		}
	}
	return db.Create(&rows).Error
}

// DeleteMemorial removes the memorial and its dependent rows. Callers run it
// inside a transaction so no orphans survive a partial failure.
func (r *memorialRepo) DeleteMemorial(ctx context.Context, id string) error {
	db := r.data.DB(ctx)
	if err := db.Where("memorial_id = ?", id).Delete(&model.GalleryItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("memorial_id = ?", id).Delete(&model.FamilyMember{}).Error; err != nil {
		return err
	}
	if err := db.Where("memorial_id = ?", id).Delete(&model.GuestbookEntry{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Memorial{}, "memorial_id = ?", id).Error
}

func (r *memorialRepo) CountPublished(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.data.DB(ctx).Model(&model.Memorial{}).
		Where("owner_id = ? AND status = ?", ownerID, constants.MemorialStatusPublished).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *memorialRepo) loadChildren(ctx context.Context, m *biz.Memorial) (*biz.Memorial, error) {
	var gallery []model.GalleryItem
	err := r.data.DB(ctx).
		Where("memorial_id = ?", m.ID).
		Order("position ASC").
		Find(&gallery).Error
	if err != nil {
		return nil, err
	}
	for i := range gallery {
		m.Gallery = append(m.Gallery, &biz.GalleryItem{
			ID:         gallery[i].ID,
			MemorialID: gallery[i].MemorialID,
			URL:        gallery[i].URL,
			AltText:    gallery[i].AltText,
			Position:   gallery[i].Position,
		})
	}

	var family []model.FamilyMember
	err = r.data.DB(ctx).
		Where("memorial_id = ?", m.ID).
		Order("family_member_id ASC").
		Find(&family).Error
	if err != nil {
		return nil, err
	}
	for i := range family {
		m.Family = append(m.Family, &biz.FamilyMember{
			ID:           family[i].ID,
			MemorialID:   family[i].MemorialID,
			Name:         family[i].Name,
			Relationship: family[i].Relationship,
		})
	}
	return m, nil
}

func toMemorialModel(m *biz.Memorial) *model.Memorial {
	return &model.Memorial{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Name:              m.Name,
		Slug:              m.Slug,
		DateOfBirth:       m.DateOfBirth,
		DateOfDeath:       m.DateOfDeath,
		Biography:         m.Biography,
		HeroImage:         m.HeroImage,
		Avatar:            m.Avatar,
		AutoApproveGuests: m.AutoApproveGuests,
		Status:            m.Status,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toMemorialEntity(m *model.Memorial) *biz.Memorial {
	return &biz.Memorial{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Name:              m.Name,
		Slug:              m.Slug,
		DateOfBirth:       m.DateOfBirth,
		DateOfDeath:       m.DateOfDeath,
		Biography:         m.Biography,
		HeroImage:         m.HeroImage,
		Avatar:            m.Avatar,
		AutoApproveGuests: m.AutoApproveGuests,
		Status:            m.Status,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
