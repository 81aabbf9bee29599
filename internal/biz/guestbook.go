package biz

import (
	"context"
	"strings"
	"time"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/constants"
	"everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// GuestbookEntry is one visitor message on a memorial. Append-only from the
// visitor side; only the memorial's owner moves it out of pending.
type GuestbookEntry struct {
	ID         string
	MemorialID string
	GuestName  string
	Message    string
	Status     string // pending, approved, rejected
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PendingCount pairs a memorial with its pending-entry count. Used by the
// cron reminder job.
type PendingCount struct {
	MemorialID string
	OwnerID    string
	Count      int64
}

// GuestbookRepo is the guestbook storage interface. GetEntry returns
// (nil, nil) when no row matches.
type GuestbookRepo interface {
	CreateEntry(ctx context.Context, entry *GuestbookEntry) error
	GetEntry(ctx context.Context, id string) (*GuestbookEntry, error)
	UpdateEntry(ctx context.Context, entry *GuestbookEntry) error
	// ListEntries returns entries newest first, optionally approved only.
	ListEntries(ctx context.Context, memorialID string, approvedOnly bool) ([]*GuestbookEntry, error)
	PendingCounts(ctx context.Context) ([]*PendingCount, error)
}

// GuestbookUsecase owns the guestbook moderation workflow.
type GuestbookUsecase struct {
	repo         GuestbookRepo
	memorialRepo MemorialRepo
	log          *log.Helper
}

// NewGuestbookUsecase creates the guestbook usecase.
func NewGuestbookUsecase(repo GuestbookRepo, memorialRepo MemorialRepo, logger log.Logger) *GuestbookUsecase {
	return &GuestbookUsecase{
		repo:         repo,
		memorialRepo: memorialRepo,
		log:          log.NewHelper(logger),
	}
}

// Submit records a visitor entry. No auth required; the memorial must be
// published. Entries land as pending unless the owner opted into
// auto-approval, which then applies to every visitor.
func (uc *GuestbookUsecase) Submit(ctx context.Context, memorialID, guestName, message string) (*GuestbookEntry, error) {
	guestName = strings.TrimSpace(guestName)
	message = strings.TrimSpace(message)
	if guestName == "" {
		return nil, errors.ErrEntryInvalid("guest_name")
	}
	if message == "" {
		return nil, errors.ErrEntryInvalid("message")
	}

	m, err := uc.memorialRepo.GetMemorial(ctx, memorialID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Status != constants.MemorialStatusPublished {
		return nil, errors.ErrMemorialNotFound()
	}

	status := constants.GuestbookStatusPending
	if m.AutoApproveGuests {
		status = constants.GuestbookStatusApproved
	}

	now := time.Now().UTC()
	entry := &GuestbookEntry{
		ID:         uuid.New().String(),
		MemorialID: memorialID,
		GuestName:  guestName,
		Message:    message,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.CreateEntry(ctx, entry); err != nil {
		uc.log.Errorf("Failed to create guestbook entry on %s: %v", memorialID, err)
		return nil, err
	}
	return entry, nil
}

// ListPublic is the visitor read path: approved entries only, newest first.
func (uc *GuestbookUsecase) ListPublic(ctx context.Context, memorialID string) ([]*GuestbookEntry, error) {
	return uc.repo.ListEntries(ctx, memorialID, true)
}

// ListForOwner is the moderation read path: every entry regardless of
// status. Owner only.
func (uc *GuestbookUsecase) ListForOwner(ctx context.Context, memorialID string) ([]*GuestbookEntry, error) {
	m, err := uc.memorialRepo.GetMemorial(ctx, memorialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.ErrMemorialNotFound()
	}
	if err := auth.CheckOwnership(ctx, m.OwnerID); err != nil {
		return nil, err
	}
	return uc.repo.ListEntries(ctx, memorialID, false)
}

// Moderate transitions one pending entry to approved or rejected. Owner
// only; approved and rejected are terminal.
func (uc *GuestbookUsecase) Moderate(ctx context.Context, entryID string, approve bool) (*GuestbookEntry, error) {
	entry, err := uc.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.ErrEntryNotFound()
	}

	m, err := uc.memorialRepo.GetMemorial(ctx, entry.MemorialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.ErrMemorialNotFound()
	}
	if err := auth.CheckOwnership(ctx, m.OwnerID); err != nil {
		return nil, err
	}

	if entry.Status != constants.GuestbookStatusPending {
		return nil, errors.ErrEntryAlreadyModerated()
	}

	if approve {
		entry.Status = constants.GuestbookStatusApproved
	} else {
		entry.Status = constants.GuestbookStatusRejected
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := uc.repo.UpdateEntry(ctx, entry); err != nil {
		uc.log.Errorf("Failed to moderate entry %s: %v", entryID, err)
		return nil, err
	}
	return entry, nil
}

// PendingModerationCounts lists memorials with entries waiting on the owner.
// Run by the cron reminder job.
func (uc *GuestbookUsecase) PendingModerationCounts(ctx context.Context) ([]*PendingCount, error) {
	counts, err := uc.repo.PendingCounts(ctx)
	if err != nil {
		uc.log.Errorf("Failed to collect pending guestbook counts: %v", err)
		return nil, err
	}
	return counts, nil
}
