package data

import (
	"context"
	"errors"

	"everkeep/memorial-service/internal/biz"
	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

type guestbookRepo struct {
	data *Data
	log  *log.Helper
}

// NewGuestbookRepo creates the guestbook repository.
func NewGuestbookRepo(data *Data, logger log.Logger) biz.GuestbookRepo {
	return &guestbookRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *guestbookRepo) CreateEntry(ctx context.Context, entry *biz.GuestbookEntry) error {
	if err := r.data.DB(ctx).Create(toEntryModel(entry)).Error; err != nil {
		r.log.Errorf("Failed to create guestbook entry %s: %v", entry.ID, err)
		return err
	}
	return nil
}

func (r *guestbookRepo) GetEntry(ctx context.Context, id string) (*biz.GuestbookEntry, error) {
	var m model.GuestbookEntry
	err := r.data.DB(ctx).First(&m, "entry_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.Errorf("Failed to get guestbook entry %s: %v", id, err)
		return nil, err
	}
	return toEntryEntity(&m), nil
}

func (r *guestbookRepo) UpdateEntry(ctx context.Context, entry *biz.GuestbookEntry) error {
	if err := r.data.DB(ctx).Save(toEntryModel(entry)).Error; err != nil {
		r.log.Errorf("Failed to update guestbook entry %s: %v", entry.ID, err)
		return err
	}
	return nil
}

func (r *guestbookRepo) ListEntries(ctx context.Context, memorialID string, approvedOnly bool) ([]*biz.GuestbookEntry, error) {
	q := r.data.DB(ctx).Where("memorial_id = ?", memorialID)
	if approvedOnly {
		q = q.Where("status = ?", constants.GuestbookStatusApproved)
	}

	var rows []model.GuestbookEntry
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		r.log.Errorf("Failed to list guestbook entries for %s: %v", memorialID, err)
		return nil, err
	}
	out := make([]*biz.GuestbookEntry, len(rows))
	for i := range rows {
		out[i] = toEntryEntity(&rows[i])
	}
	return out, nil
}

func (r *guestbookRepo) PendingCounts(ctx context.Context) ([]*biz.PendingCount, error) {
	var rows []struct {
		MemorialID string
		OwnerID    string
		Count      int64
	}
	err := r.data.DB(ctx).Model(&model.GuestbookEntry{}).
		Select("guestbook_entries.memorial_id, memorials.owner_id, COUNT(*) AS count").
		Joins("JOIN memorials ON memorials.memorial_id = guestbook_entries.memorial_id").
		Where("guestbook_entries.status = ?", constants.GuestbookStatusPending).
		Group("guestbook_entries.memorial_id, memorials.owner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*biz.PendingCount, len(rows))
	for i, row := range rows {
		out[i] = &biz.PendingCount{
			MemorialID: row.MemorialID,
			OwnerID:    row.OwnerID,
			Count:      row.Count,
		}
	}
	return out, nil
}

func toEntryModel(e *biz.GuestbookEntry) *model.GuestbookEntry {
	return &model.GuestbookEntry{
		ID:         e.ID,
		MemorialID: e.MemorialID,
		GuestName:  e.GuestName,
		Message:    e.Message,
		Status:     e.Status,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toEntryEntity(m *model.GuestbookEntry) *biz.GuestbookEntry {
	return &biz.GuestbookEntry{
		ID:         m.ID,
		MemorialID: m.MemorialID,
		GuestName:  m.GuestName,
		Message:    m.Message,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
