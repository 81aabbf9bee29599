package service

import (
	"context"
	"time"

	"everkeep/memorial-service/internal/biz"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// GuestbookService fronts the guestbook moderation workflow.
type GuestbookService struct {
	uc *biz.GuestbookUsecase
}

// NewGuestbookService creates the guestbook service.
func NewGuestbookService(uc *biz.GuestbookUsecase) *GuestbookService {
	return &GuestbookService{uc: uc}
}

type SubmitEntryRequest struct {
	GuestName string `json:"guest_name"`
	Message   string `json:"message"`
}

type ModerateEntryRequest struct {
	Action string `json:"action"` // approve or reject
}

type GuestbookEntryReply struct {
	ID         string    `json:"id"`
	MemorialID string    `json:"memorial_id"`
	GuestName  string    `json:"guest_name"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type GuestbookListReply struct {
	Entries []*GuestbookEntryReply `json:"entries"`
}

// SubmitEntry records a visitor message; no auth required.
func (s *GuestbookService) SubmitEntry(ctx context.Context, memorialID string, req *SubmitEntryRequest) (*GuestbookEntryReply, error) {
	entry, err := s.uc.Submit(ctx, memorialID, req.GuestName, req.Message)
	if err != nil {
		return nil, err
	}
	return toEntryReply(entry), nil
}

// ListPublicEntries returns approved entries, newest first.
func (s *GuestbookService) ListPublicEntries(ctx context.Context, memorialID string) (*GuestbookListReply, error) {
	entries, err := s.uc.ListPublic(ctx, memorialID)
	if err != nil {
		return nil, err
	}
	return toListReply(entries), nil
}

// ListOwnerEntries returns every entry for moderation; owner only.
func (s *GuestbookService) ListOwnerEntries(ctx context.Context, memorialID string) (*GuestbookListReply, error) {
	entries, err := s.uc.ListForOwner(ctx, memorialID)
	if err != nil {
		return nil, err
	}
	return toListReply(entries), nil
}

// ModerateEntry approves or rejects one pending entry; owner only.
func (s *GuestbookService) ModerateEntry(ctx context.Context, entryID string, req *ModerateEntryRequest) (*GuestbookEntryReply, error) {
	var approve bool
	switch req.Action {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		return nil, kerrors.BadRequest("INVALID_ARGUMENT", "action must be approve or reject")
	}

	entry, err := s.uc.Moderate(ctx, entryID, approve)
	if err != nil {
		return nil, err
	}
	return toEntryReply(entry), nil
}

func toEntryReply(e *biz.GuestbookEntry) *GuestbookEntryReply {
	return &GuestbookEntryReply{
		ID:         e.ID,
		MemorialID: e.MemorialID,
		GuestName:  e.GuestName,
		Message:    e.Message,
		Status:     e.Status,
		CreatedAt:  e.CreatedAt,
	}
}

func toListReply(entries []*biz.GuestbookEntry) *GuestbookListReply {
	reply := &GuestbookListReply{Entries: make([]*GuestbookEntryReply, len(entries))}
	for i, e := range entries {
		reply.Entries[i] = toEntryReply(e)
	}
	return reply
}
