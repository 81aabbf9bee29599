package biz

import (
	"context"
	"sync"
	"testing"

	"everkeep/memorial-service/internal/auth"
	bizErrors "everkeep/memorial-service/internal/errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemorialUsecase(repo *memMemorialRepo, locker *fakeLocker) *MemorialUsecase {
	entitlement := NewEntitlementUsecase(repo, testBootstrap(), log.DefaultLogger)
	return NewMemorialUsecase(repo, entitlement, locker, &fakeTx{}, log.DefaultLogger)
}

func ownerCtx(id string) context.Context {
	return auth.WithIdentity(context.Background(), id, id+"@example.com")
}

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Maria Schmidt", "mariaschmidt"},
		{"  O'Brien, Pat  ", "obrienpat"},
		{"Jean-Luc 2nd", "jeanluc2nd"},
		{"ALLCAPS", "allcaps"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveSlug(tt.name), "name %q", tt.name)
	}
}

func TestCreateMemorialDefaults(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name: "Maria Schmidt",
		Gallery: []*GalleryItem{
			{URL: "https://cdn.example.com/1.jpg", Position: 0},
		},
		Family: []*FamilyMember{
			{Name: "Pat", Relationship: "child"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", m.Status)
	assert.Equal(t, "mariaschmidt", m.Slug)
	assert.Equal(t, "owner-1", m.OwnerID)
	assert.Len(t, m.Gallery, 1)
	assert.Len(t, m.Family, 1)
}

func TestCreateMemorialValidation(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	_, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{Name: "   "})
	assert.ErrorIs(t, err, bizErrors.ErrIncompleteMemorial(""))

	_, err = uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name:   "Maria",
		Family: []*FamilyMember{{Name: "X", Relationship: "roommate"}},
	})
	assert.ErrorIs(t, err, bizErrors.ErrIncompleteMemorial(""))
}

func TestGetMemorialOwnerOnly(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{Name: "Maria"})
	require.NoError(t, err)

	got, err := uc.GetMemorial(ownerCtx("owner-1"), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = uc.GetMemorial(ownerCtx("owner-2"), m.ID)
	assert.Error(t, err)

	_, err = uc.GetMemorial(context.Background(), m.ID)
	assert.Error(t, err, "anonymous access is rejected")

	_, err = uc.GetMemorial(ownerCtx("owner-1"), "missing-id")
	assert.ErrorIs(t, err, bizErrors.ErrMemorialNotFound())
}

func TestGetPublishedBySlug(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	repo.memorials["m1"] = &Memorial{ID: "m1", OwnerID: "owner-1", Slug: "maria", Status: "draft"}

	_, err := uc.GetPublishedBySlug(context.Background(), "maria")
	assert.ErrorIs(t, err, bizErrors.ErrMemorialNotFound(), "drafts are invisible to visitors")

	repo.memorials["m1"].Status = "published"
	got, err := uc.GetPublishedBySlug(context.Background(), "maria")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)
}

func TestUpdateMemorialReplacesCollections(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name: "Maria",
		Gallery: []*GalleryItem{
			{URL: "https://cdn.example.com/1.jpg", Position: 0},
			{URL: "https://cdn.example.com/2.jpg", Position: 1},
		},
	})
	require.NoError(t, err)

	updated, err := uc.UpdateMemorial(ownerCtx("owner-1"), m.ID, &MemorialInput{
		Name:    "Maria Schmidt",
		Gallery: []*GalleryItem{{URL: "https://cdn.example.com/3.jpg", Position: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Schmidt", updated.Name)
	require.Len(t, updated.Gallery, 1, "gallery is replaced wholesale, not merged")
	assert.Equal(t, "https://cdn.example.com/3.jpg", updated.Gallery[0].URL)

	stored, err := repo.GetMemorial(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Gallery, 1)
}

func TestUpdateMemorialKeepsSlugWhenOmitted(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{Name: "Maria", Slug: "maria-1932"})
	require.NoError(t, err)

	updated, err := uc.UpdateMemorial(ownerCtx("owner-1"), m.ID, &MemorialInput{Name: "Maria Schmidt"})
	require.NoError(t, err)
	assert.Equal(t, "maria-1932", updated.Slug)
}

func TestUpdateMemorialAllowedWhenPublished(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m := publishedMemorial(t, uc, repo, "owner-1")

	// editing an already-published memorial never hits the quota gate
	updated, err := uc.UpdateMemorial(ownerCtx("owner-1"), m.ID, &MemorialInput{
		Name:        "Maria Schmidt",
		DateOfBirth: "1932-04-17",
		DateOfDeath: "2024-01-03",
	})
	require.NoError(t, err)
	assert.Equal(t, "published", updated.Status)
}

func publishedMemorial(t *testing.T, uc *MemorialUsecase, repo *memMemorialRepo, ownerID string) *Memorial {
	t.Helper()
	m, err := uc.CreateMemorial(ownerCtx(ownerID), ownerID, &MemorialInput{
		Name:        "Maria Schmidt",
		DateOfBirth: "1932-04-17",
		DateOfDeath: "2024-01-03",
	})
	require.NoError(t, err)
	published, err := uc.Publish(ownerCtx(ownerID), m.ID)
	require.NoError(t, err)
	require.Equal(t, "published", published.Status)
	return published
}

func TestPublishHappyPath(t *testing.T) {
	repo := newMemMemorialRepo()
	locker := &fakeLocker{}
	uc := newTestMemorialUsecase(repo, locker)

	m := publishedMemorial(t, uc, repo, "owner-1")
	assert.Equal(t, "published", repo.memorials[m.ID].Status)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released, "lock is released after publish")
}

func TestPublishIsIdempotent(t *testing.T) {
	repo := newMemMemorialRepo()
	locker := &fakeLocker{}
	uc := newTestMemorialUsecase(repo, locker)

	m := publishedMemorial(t, uc, repo, "owner-1")

	again, err := uc.Publish(ownerCtx("owner-1"), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "published", again.Status)
	assert.Equal(t, 1, locker.acquired, "republishing a published memorial skips the lock")
}

func TestPublishReadiness(t *testing.T) {
	tests := []struct {
		name  string
		in    MemorialInput
		field string
	}{
		{"missing dates", MemorialInput{Name: "Maria"}, "date_of_birth"},
		{"missing death date", MemorialInput{Name: "Maria", DateOfBirth: "1932-04-17"}, "date_of_death"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemMemorialRepo()
			uc := newTestMemorialUsecase(repo, &fakeLocker{})

			m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &tt.in)
			require.NoError(t, err)

			_, err = uc.Publish(ownerCtx("owner-1"), m.ID)
			assert.ErrorIs(t, err, bizErrors.ErrIncompleteMemorial(""))
			assert.Equal(t, tt.field, kerrors.FromError(err).Metadata["field"])
			assert.Equal(t, "draft", repo.memorials[m.ID].Status)
		})
	}
}

func TestPublishDeniedOverQuota(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	publishedMemorial(t, uc, repo, "owner-1")

	second, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name:        "Hans Schmidt",
		DateOfBirth: "1930-01-01",
		DateOfDeath: "2020-01-01",
	})
	require.NoError(t, err)

	_, err = uc.Publish(ownerCtx("owner-1"), second.ID)
	assert.ErrorIs(t, err, bizErrors.ErrQuotaExceeded(""))
	assert.Equal(t, "draft", repo.memorials[second.ID].Status, "denied publish leaves the draft untouched")
}

func TestConcurrentPublishesAllowOnlyOne(t *testing.T) {
	repo := newMemMemorialRepo()
	entitlement := NewEntitlementUsecase(repo, testBootstrap(), log.DefaultLogger)
	uc := NewMemorialUsecase(repo, entitlement, &serialLocker{}, &fakeTx{}, log.DefaultLogger)

	first, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name:        "Maria Schmidt",
		Slug:        "maria",
		DateOfBirth: "1932-04-17",
		DateOfDeath: "2024-01-03",
	})
	require.NoError(t, err)
	second, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name:        "Hans Schmidt",
		Slug:        "hans",
		DateOfBirth: "1930-01-01",
		DateOfDeath: "2020-01-01",
	})
	require.NoError(t, err)

	// race two publish attempts for the same owner; the per-identity lock
	// serializes them and the in-transaction recount denies the loser
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = uc.Publish(ownerCtx("owner-1"), id)
		}(i, id)
	}
	wg.Wait()

	var published, denied int
	for _, err := range errs {
		switch {
		case err == nil:
			published++
		case kerrors.Is(err, bizErrors.ErrQuotaExceeded("")) || kerrors.Is(err, bizErrors.ErrPublishLockBusy()):
			denied++
		default:
			t.Fatalf("unexpected publish error: %v", err)
		}
	}
	assert.Equal(t, 1, published, "exactly one racing publish may win")
	assert.Equal(t, 1, denied)

	count, err := repo.CountPublished(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPublishLockBusy(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{busy: true})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name:        "Maria Schmidt",
		DateOfBirth: "1932-04-17",
		DateOfDeath: "2024-01-03",
	})
	require.NoError(t, err)

	_, err = uc.Publish(ownerCtx("owner-1"), m.ID)
	assert.ErrorIs(t, err, bizErrors.ErrPublishLockBusy())
	assert.Equal(t, "draft", repo.memorials[m.ID].Status)
}

func TestDeleteMemorialCascades(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{
		Name:    "Maria",
		Gallery: []*GalleryItem{{URL: "https://cdn.example.com/1.jpg"}},
		Family:  []*FamilyMember{{Name: "Pat", Relationship: "child"}},
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteMemorial(ownerCtx("owner-1"), m.ID))
	assert.NotContains(t, repo.memorials, m.ID)
	assert.NotContains(t, repo.gallery, m.ID)
	assert.NotContains(t, repo.family, m.ID)
}

func TestDeleteMemorialOwnerOnly(t *testing.T) {
	repo := newMemMemorialRepo()
	uc := newTestMemorialUsecase(repo, &fakeLocker{})

	m, err := uc.CreateMemorial(ownerCtx("owner-1"), "owner-1", &MemorialInput{Name: "Maria"})
	require.NoError(t, err)

	err = uc.DeleteMemorial(ownerCtx("owner-2"), m.ID)
	assert.Error(t, err)
	assert.Contains(t, repo.memorials, m.ID)
}
