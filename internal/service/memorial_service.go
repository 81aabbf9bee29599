package service

import (
	"context"
	"time"

	"everkeep/memorial-service/internal/auth"
	"everkeep/memorial-service/internal/biz"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// MemorialService fronts the memorial lifecycle.
type MemorialService struct {
	uc          *biz.MemorialUsecase
	entitlement *biz.EntitlementUsecase
}

// NewMemorialService creates the memorial service.
func NewMemorialService(uc *biz.MemorialUsecase, entitlement *biz.EntitlementUsecase) *MemorialService {
	return &MemorialService{uc: uc, entitlement: entitlement}
}

type GalleryItemPayload struct {
	URL      string `json:"url"`
	AltText  string `json:"alt_text,omitempty"`
	Position int    `json:"position"`
}

type FamilyMemberPayload struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

type MemorialRequest struct {
	Name              string                 `json:"name"`
	Slug              string                 `json:"slug,omitempty"`
	DateOfBirth       string                 `json:"date_of_birth,omitempty"`
	DateOfDeath       string                 `json:"date_of_death,omitempty"`
	Biography         string                 `json:"biography,omitempty"`
	HeroImage         string                 `json:"hero_image,omitempty"`
	Avatar            string                 `json:"avatar,omitempty"`
	AutoApproveGuests bool                   `json:"auto_approve_guests"`
	Gallery           []*GalleryItemPayload  `json:"gallery,omitempty"`
	Family            []*FamilyMemberPayload `json:"family,omitempty"`
}

type MemorialReply struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Slug              string                 `json:"slug"`
	DateOfBirth       string                 `json:"date_of_birth,omitempty"`
	DateOfDeath       string                 `json:"date_of_death,omitempty"`
	Biography         string                 `json:"biography,omitempty"`
	HeroImage         string                 `json:"hero_image,omitempty"`
	Avatar            string                 `json:"avatar,omitempty"`
	AutoApproveGuests bool                   `json:"auto_approve_guests"`
	Status            string                 `json:"status"`
	Gallery           []*GalleryItemPayload  `json:"gallery"`
	Family            []*FamilyMemberPayload `json:"family"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

type MemorialListReply struct {
	Memorials []*MemorialReply `json:"memorials"`
}

type CanPublishReply struct {
	CanPublish bool `json:"can_publish"`
}

// CreateMemorial creates a draft owned by the current identity.
func (s *MemorialService) CreateMemorial(ctx context.Context, req *MemorialRequest) (*MemorialReply, error) {
	ownerID, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, kerrors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	m, err := s.uc.CreateMemorial(ctx, ownerID, toInput(req))
	if err != nil {
		return nil, err
	}
	return toMemorialReply(m), nil
}

// GetMemorial is the owner read path (any state).
func (s *MemorialService) GetMemorial(ctx context.Context, id string) (*MemorialReply, error) {
	m, err := s.uc.GetMemorial(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMemorialReply(m), nil
}

// GetPublicMemorial resolves /memorial/<slug> for anonymous visitors.
func (s *MemorialService) GetPublicMemorial(ctx context.Context, slug string) (*MemorialReply, error) {
	m, err := s.uc.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return toMemorialReply(m), nil
}

// ListMemorials lists the current identity's memorials.
func (s *MemorialService) ListMemorials(ctx context.Context) (*MemorialListReply, error) {
	ownerID, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, kerrors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	memorials, err := s.uc.ListMemorials(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	reply := &MemorialListReply{Memorials: make([]*MemorialReply, len(memorials))}
	for i, m := range memorials {
		reply.Memorials[i] = toMemorialReply(m)
	}
	return reply, nil
}

// UpdateMemorial saves owner edits.
func (s *MemorialService) UpdateMemorial(ctx context.Context, id string, req *MemorialRequest) (*MemorialReply, error) {
	m, err := s.uc.UpdateMemorial(ctx, id, toInput(req))
	if err != nil {
		return nil, err
	}
	return toMemorialReply(m), nil
}

// PublishMemorial runs the entitlement-gated publish transition.
func (s *MemorialService) PublishMemorial(ctx context.Context, id string) (*MemorialReply, error) {
	m, err := s.uc.Publish(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMemorialReply(m), nil
}

// DeleteMemorial removes a memorial and everything under it.
func (s *MemorialService) DeleteMemorial(ctx context.Context, id string) error {
	return s.uc.DeleteMemorial(ctx, id)
}

// CanPublish lets the dashboard show or hide the publish action up front.
func (s *MemorialService) CanPublish(ctx context.Context) (*CanPublishReply, error) {
	ownerID, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, kerrors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	ok, err := s.entitlement.CanPublish(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &CanPublishReply{CanPublish: ok}, nil
}

func toInput(req *MemorialRequest) *biz.MemorialInput {
	in := &biz.MemorialInput{
		Name:              req.Name,
		Slug:              req.Slug,
		DateOfBirth:       req.DateOfBirth,
		DateOfDeath:       req.DateOfDeath,
		Biography:         req.Biography,
		HeroImage:         req.HeroImage,
		Avatar:            req.Avatar,
		AutoApproveGuests: req.AutoApproveGuests,
	}
	for _, g := range req.Gallery {
		in.Gallery = append(in.Gallery, &biz.GalleryItem{
			URL:      g.URL,
			AltText:  g.AltText,
			Position: g.Position,
		})
	}
	for _, f := range req.Family {
		in.Family = append(in.Family, &biz.FamilyMember{
			Name:         f.Name,
			Relationship: f.Relationship,
		})
	}
	return in
}

func toMemorialReply(m *biz.Memorial) *MemorialReply {
	reply := &MemorialReply{
		ID:                m.ID,
		Name:              m.Name,
		Slug:              m.Slug,
		DateOfBirth:       m.DateOfBirth,
		DateOfDeath:       m.DateOfDeath,
		Biography:         m.Biography,
		HeroImage:         m.HeroImage,
		Avatar:            m.Avatar,
		AutoApproveGuests: m.AutoApproveGuests,
		Status:            m.Status,
		Gallery:           []*GalleryItemPayload{},
		Family:            []*FamilyMemberPayload{},
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, g := range m.Gallery {
		reply.Gallery = append(reply.Gallery, &GalleryItemPayload{
			URL:      g.URL,
			AltText:  g.AltText,
			Position: g.Position,
		})
	}
	for _, f := range m.Family {
		reply.Family = append(reply.Family, &FamilyMemberPayload{
			Name:         f.Name,
			Relationship: f.Relationship,
		})
	}
	return reply
}
