package biz

import (
	"context"
	"testing"

	bizErrors "everkeep/memorial-service/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuestbookUsecase(entries *memGuestbookRepo, memorials *memMemorialRepo) *GuestbookUsecase {
	return NewGuestbookUsecase(entries, memorials, log.DefaultLogger)
}

func seedPublishedMemorial(repo *memMemorialRepo, id, ownerID string, autoApprove bool) {
	repo.memorials[id] = &Memorial{
		ID:                id,
		OwnerID:           ownerID,
		Slug:              id,
		Status:            "published",
		AutoApproveGuests: autoApprove,
	}
}

func TestSubmitEntryDefaultsToPending(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	entry, err := uc.Submit(context.Background(), "m1", "  Anna  ", "  Rest in peace.  ")
	require.NoError(t, err)
	assert.Equal(t, "pending", entry.Status)
	assert.Equal(t, "Anna", entry.GuestName)
	assert.Equal(t, "Rest in peace.", entry.Message)
}

func TestSubmitEntryAutoApprove(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", true)
	uc := newTestGuestbookUsecase(entries, memorials)

	entry, err := uc.Submit(context.Background(), "m1", "Anna", "Lovely person.")
	require.NoError(t, err)
	assert.Equal(t, "approved", entry.Status)
}

func TestSubmitEntryValidation(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	_, err := uc.Submit(context.Background(), "m1", "   ", "message")
	assert.ErrorIs(t, err, bizErrors.ErrEntryInvalid(""))

	_, err = uc.Submit(context.Background(), "m1", "Anna", "   ")
	assert.ErrorIs(t, err, bizErrors.ErrEntryInvalid(""))
}

func TestSubmitEntryRequiresPublishedMemorial(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	memorials.memorials["m1"] = &Memorial{ID: "m1", OwnerID: "owner-1", Status: "draft"}
	uc := newTestGuestbookUsecase(entries, memorials)

	_, err := uc.Submit(context.Background(), "m1", "Anna", "Hello")
	assert.ErrorIs(t, err, bizErrors.ErrMemorialNotFound())

	_, err = uc.Submit(context.Background(), "missing", "Anna", "Hello")
	assert.ErrorIs(t, err, bizErrors.ErrMemorialNotFound())
}

func TestListPublicShowsApprovedOnlyNewestFirst(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	first, err := uc.Submit(context.Background(), "m1", "Anna", "First")
	require.NoError(t, err)
	second, err := uc.Submit(context.Background(), "m1", "Ben", "Second")
	require.NoError(t, err)

	public, err := uc.ListPublic(context.Background(), "m1")
	require.NoError(t, err)
	assert.Empty(t, public, "pending entries stay hidden from visitors")

	_, err = uc.Moderate(ownerCtx("owner-1"), first.ID, true)
	require.NoError(t, err)
	_, err = uc.Moderate(ownerCtx("owner-1"), second.ID, true)
	require.NoError(t, err)

	public, err = uc.ListPublic(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Second", public[0].Message, "newest first")
	assert.Equal(t, "First", public[1].Message)
}

func TestListForOwnerShowsEverything(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	entry, err := uc.Submit(context.Background(), "m1", "Anna", "Hello")
	require.NoError(t, err)
	_, err = uc.Moderate(ownerCtx("owner-1"), entry.ID, false)
	require.NoError(t, err)

	all, err := uc.ListForOwner(ownerCtx("owner-1"), "m1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "rejected", all[0].Status)

	_, err = uc.ListForOwner(ownerCtx("owner-2"), "m1")
	assert.Error(t, err, "only the owner sees the moderation queue")

	_, err = uc.ListForOwner(context.Background(), "m1")
	assert.Error(t, err)
}

func TestModerateTransitions(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	approveMe, err := uc.Submit(context.Background(), "m1", "Anna", "Approve me")
	require.NoError(t, err)
	rejectMe, err := uc.Submit(context.Background(), "m1", "Ben", "Reject me")
	require.NoError(t, err)

	approved, err := uc.Moderate(ownerCtx("owner-1"), approveMe.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)

	rejected, err := uc.Moderate(ownerCtx("owner-1"), rejectMe.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
}

func TestModerateTerminalStates(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	entry, err := uc.Submit(context.Background(), "m1", "Anna", "Hello")
	require.NoError(t, err)
	_, err = uc.Moderate(ownerCtx("owner-1"), entry.ID, true)
	require.NoError(t, err)

	// approved and rejected cannot be revisited
	_, err = uc.Moderate(ownerCtx("owner-1"), entry.ID, false)
	assert.ErrorIs(t, err, bizErrors.ErrEntryAlreadyModerated())
}

func TestModerateOwnerOnly(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	entry, err := uc.Submit(context.Background(), "m1", "Anna", "Hello")
	require.NoError(t, err)

	_, err = uc.Moderate(ownerCtx("owner-2"), entry.ID, true)
	assert.Error(t, err)

	stored, err := entries.GetEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored.Status, "denied moderation leaves the entry pending")

	_, err = uc.Moderate(ownerCtx("owner-1"), "missing", true)
	assert.ErrorIs(t, err, bizErrors.ErrEntryNotFound())
}

func TestPendingModerationCounts(t *testing.T) {
	entries := newMemGuestbookRepo()
	memorials := newMemMemorialRepo()
	seedPublishedMemorial(memorials, "m1", "owner-1", false)
	uc := newTestGuestbookUsecase(entries, memorials)

	_, err := uc.Submit(context.Background(), "m1", "Anna", "One")
	require.NoError(t, err)
	_, err = uc.Submit(context.Background(), "m1", "Ben", "Two")
	require.NoError(t, err)

	counts, err := uc.PendingModerationCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "m1", counts[0].MemorialID)
	assert.Equal(t, int64(2), counts[0].Count)
}
