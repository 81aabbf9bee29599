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

// Memorial is the tribute record, with its dependent collections.
type Memorial struct {
	ID          string
	OwnerID     string
	Name        string
	Slug        string
	DateOfBirth string // ISO date, e.g. 1932-04-17
	DateOfDeath string
	Biography   string
	HeroImage   string
	Avatar      string
	// AutoApproveGuests makes visitor guestbook entries land as approved
	// instead of pending. Applies to every visitor; there is no allow-list.
	AutoApproveGuests bool
	Status            string // draft, pending, published
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Gallery           []*GalleryItem
	Family            []*FamilyMember
}

// GalleryItem is one ordered media entry on a memorial.
type GalleryItem struct {
	ID         uint64
	MemorialID string
	URL        string
	AltText    string
	Position   int
}

// FamilyMember is one family-tree entry on a memorial.
type FamilyMember struct {
	ID           uint64
	MemorialID   string
	Name         string
	Relationship string // parent, spouse, child, sibling, grandchild
}

// MemorialInput carries the owner-editable fields of a memorial. Gallery and
// Family are saved with full-replace semantics.
type MemorialInput struct {
	Name              string
	Slug              string
	DateOfBirth       string
	DateOfDeath       string
	Biography         string
	HeroImage         string
	Avatar            string
	AutoApproveGuests bool
	Gallery           []*GalleryItem
	Family            []*FamilyMember
}

// MemorialRepo is the memorial storage interface. Lookups return (nil, nil)
// when no row matches; Get loads the dependent collections.
type MemorialRepo interface {
	CreateMemorial(ctx context.Context, m *Memorial) error
	GetMemorial(ctx context.Context, id string) (*Memorial, error)
	GetMemorialBySlug(ctx context.Context, slug string) (*Memorial, error)
	ListMemorials(ctx context.Context, ownerID string) ([]*Memorial, error)
	SaveMemorial(ctx context.Context, m *Memorial) error
	ReplaceGallery(ctx context.Context, memorialID string, items []*GalleryItem) error
	ReplaceFamily(ctx context.Context, memorialID string, members []*FamilyMember) error
	// DeleteMemorial removes the memorial and all dependent rows.
	DeleteMemorial(ctx context.Context, id string) error
	CountPublished(ctx context.Context, ownerID string) (int64, error)
}

// PublishLocker serializes publish attempts per identity so the quota check
// and the status write cannot interleave across concurrent requests.
type PublishLocker interface {
	// LockPublish acquires the per-identity publish mutex and returns an
	// unlock func. Returns an error when the lock is held elsewhere.
	LockPublish(ctx context.Context, identityID string) (func(), error)
}

// MemorialUsecase owns the memorial lifecycle.
type MemorialUsecase struct {
	repo        MemorialRepo
	entitlement *EntitlementUsecase
	locker      PublishLocker
	tm          Transaction
	log         *log.Helper
}

// NewMemorialUsecase creates the memorial usecase.
func NewMemorialUsecase(
	repo MemorialRepo,
	entitlement *EntitlementUsecase,
	locker PublishLocker,
	tm Transaction,
	logger log.Logger,
) *MemorialUsecase {
	return &MemorialUsecase{
		repo:        repo,
		entitlement: entitlement,
		locker:      locker,
		tm:          tm,
		log:         log.NewHelper(logger),
	}
}

// CreateMemorial creates a draft owned by the current identity.
func (uc *MemorialUsecase) CreateMemorial(ctx context.Context, ownerID string, in *MemorialInput) (*Memorial, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	slug := in.Slug
	if slug == "" {
		slug = DeriveSlug(in.Name)
	}

	now := time.Now().UTC()
	m := &Memorial{
		ID:                uuid.New().String(),
		OwnerID:           ownerID,
		Name:              in.Name,
		Slug:              slug,
		DateOfBirth:       in.DateOfBirth,
		DateOfDeath:       in.DateOfDeath,
		Biography:         in.Biography,
		HeroImage:         in.HeroImage,
		Avatar:            in.Avatar,
		AutoApproveGuests: in.AutoApproveGuests,
		Status:            constants.MemorialStatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := uc.tm.Exec(ctx, func(ctx context.Context) error {
		if err := uc.repo.CreateMemorial(ctx, m); err != nil {
			return err
		}
		if err := uc.repo.ReplaceGallery(ctx, m.ID, in.Gallery); err != nil {
			return err
		}
		return uc.repo.ReplaceFamily(ctx, m.ID, in.Family)
	})
	if err != nil {
		uc.log.Errorf("Failed to create memorial for %s: %v", ownerID, err)
		return nil, err
	}

	m.Gallery = in.Gallery
	m.Family = in.Family
	uc.log.Infof("Created memorial %s (slug=%s) for %s", m.ID, m.Slug, ownerID)
	return m, nil
}

// GetMemorial is the owner read path; works in any state.
func (uc *MemorialUsecase) GetMemorial(ctx context.Context, id string) (*Memorial, error) {
	m, err := uc.repo.GetMemorial(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.ErrMemorialNotFound()
	}
	if err := auth.CheckOwnership(ctx, m.OwnerID); err != nil {
		return nil, err
	}
	return m, nil
}

// GetPublishedBySlug is the anonymous read path; only published memorials
// resolve.
func (uc *MemorialUsecase) GetPublishedBySlug(ctx context.Context, slug string) (*Memorial, error) {
	m, err := uc.repo.GetMemorialBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Status != constants.MemorialStatusPublished {
		return nil, errors.ErrMemorialNotFound()
	}
	return m, nil
}

// ListMemorials returns the current identity's memorials, any state.
func (uc *MemorialUsecase) ListMemorials(ctx context.Context, ownerID string) ([]*Memorial, error) {
	return uc.repo.ListMemorials(ctx, ownerID)
}

// UpdateMemorial saves owner edits in any state, including published; you
// may always edit what you already own. Gallery and family are replaced
// wholesale inside the same transaction as the parent row, so a partial
// failure never leaves the memorial without its children.
func (uc *MemorialUsecase) UpdateMemorial(ctx context.Context, id string, in *MemorialInput) (*Memorial, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	m, err := uc.GetMemorial(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Name = in.Name
	if in.Slug != "" {
		m.Slug = in.Slug
	} else if m.Slug == "" {
		m.Slug = DeriveSlug(in.Name)
	}
	m.DateOfBirth = in.DateOfBirth
	m.DateOfDeath = in.DateOfDeath
	m.Biography = in.Biography
	m.HeroImage = in.HeroImage
	m.Avatar = in.Avatar
	m.AutoApproveGuests = in.AutoApproveGuests
	m.UpdatedAt = time.Now().UTC()

	err = uc.tm.Exec(ctx, func(ctx context.Context) error {
		if err := uc.repo.SaveMemorial(ctx, m); err != nil {
			return err
		}
		if err := uc.repo.ReplaceGallery(ctx, m.ID, in.Gallery); err != nil {
			return err
		}
		return uc.repo.ReplaceFamily(ctx, m.ID, in.Family)
	})
	if err != nil {
		uc.log.Errorf("Failed to update memorial %s: %v", id, err)
		return nil, err
	}

	m.Gallery = in.Gallery
	m.Family = in.Family
	return m, nil
}

// Publish moves a memorial to published. The quota check runs under the
// per-identity publish lock and inside the transaction that flips the
// status, so two racing attempts cannot both pass the gate.
func (uc *MemorialUsecase) Publish(ctx context.Context, id string) (*Memorial, error) {
	m, err := uc.GetMemorial(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == constants.MemorialStatusPublished {
		return m, nil
	}

	if err := publishReadiness(m); err != nil {
		return nil, err
	}

	unlock, err := uc.locker.LockPublish(ctx, m.OwnerID)
	if err != nil {
		uc.log.Infof("Publish lock busy for %s", m.OwnerID)
		return nil, errors.ErrPublishLockBusy()
	}
	defer unlock()

	err = uc.tm.Exec(ctx, func(ctx context.Context) error {
		if err := uc.entitlement.AssertCanPublish(ctx, m.OwnerID); err != nil {
			return err
		}
		m.Status = constants.MemorialStatusPublished
		m.UpdatedAt = time.Now().UTC()
		return uc.repo.SaveMemorial(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("Published memorial %s for %s", m.ID, m.OwnerID)
	return m, nil
}

// DeleteMemorial removes the memorial and cascades to gallery, family and
// guestbook rows in one transaction.
func (uc *MemorialUsecase) DeleteMemorial(ctx context.Context, id string) error {
	m, err := uc.GetMemorial(ctx, id)
	if err != nil {
		return err
	}

	err = uc.tm.Exec(ctx, func(ctx context.Context) error {
		return uc.repo.DeleteMemorial(ctx, m.ID)
	})
	if err != nil {
		uc.log.Errorf("Failed to delete memorial %s: %v", id, err)
		return err
	}
	uc.log.Infof("Deleted memorial %s", id)
	return nil
}

// publishReadiness checks the fields a public page cannot render without.
func publishReadiness(m *Memorial) error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return errors.ErrIncompleteMemorial("name")
	case m.Slug == "":
		return errors.ErrIncompleteMemorial("slug")
	case m.DateOfBirth == "":
		return errors.ErrIncompleteMemorial("date_of_birth")
	case m.DateOfDeath == "":
		return errors.ErrIncompleteMemorial("date_of_death")
	}
	return nil
}

func validateInput(in *MemorialInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.ErrIncompleteMemorial("name")
	}
	for _, f := range in.Family {
		if !constants.FamilyRelationships[f.Relationship] {
			return errors.ErrIncompleteMemorial("relationship")
		}
	}
	return nil
}

// DeriveSlug lowercases the name and strips everything outside [a-z0-9].
// Collisions surface from the unique index as SlugTaken.
func DeriveSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
