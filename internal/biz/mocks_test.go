package biz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"everkeep/memorial-service/internal/auth"
)

// In-memory fakes for the repo interfaces. Maps keyed the way the real
// indexes are, so unique-constraint behavior can be simulated.

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*Order // by id
	err    error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[string]*Order{}}
}

func (r *memOrderRepo) CreateOrder(ctx context.Context, order *Order) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetOrderByToken(ctx context.Context, token string) (*Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PurchaseToken == token {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) GetOrderByPaymentRef(ctx context.Context, paymentRef string) (*Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentRef == paymentRef {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) UpdateOrder(ctx context.Context, order *Order) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) MarkStalePendingFailed(ctx context.Context, cutoff time.Time) (int, []string, error) {
	if r.err != nil {
		return 0, nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, o := range r.orders {
		if o.Status == "pending" && o.CreatedAt.Before(cutoff) {
			o.Status = "failed"
			ids = append(ids, o.ID)
		}
	}
	return len(ids), ids, nil
}

type memIdentityRepo struct {
	mu      sync.Mutex
	byEmail map[string]*Identity
	// missFirstLookup makes the first GetIdentityByEmail return no row, to
	// simulate a concurrent insert winning between lookup and create.
	missFirstLookup bool
	createErr       error
	lookupErr       error
	createSeen      int
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{byEmail: map[string]*Identity{}}
}

func (r *memIdentityRepo) GetIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missFirstLookup {
		r.missFirstLookup = false
		return nil, nil
	}
	if id, ok := r.byEmail[email]; ok {
		cp := *id
		return &cp, nil
	}
	return nil, nil
}

func (r *memIdentityRepo) GetIdentityByID(ctx context.Context, id string) (*Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ident := range r.byEmail {
		if ident.ID == id {
			cp := *ident
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memIdentityRepo) CreateIdentity(ctx context.Context, identity *Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createSeen++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byEmail[identity.Email]; ok {
		return fmt.Errorf("duplicate entry for key 'email'")
	}
	cp := *identity
	r.byEmail[identity.Email] = &cp
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
	saveErr  error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*auth.Session{}}
}

func (r *memSessionRepo) SaveSession(ctx context.Context, session *auth.Session, ttl time.Duration) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.Token] = &cp
	return nil
}

func (r *memSessionRepo) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSessionRepo) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

type memMemorialRepo struct {
	mu        sync.Mutex
	memorials map[string]*Memorial // by id
	gallery   map[string][]*GalleryItem
	family    map[string][]*FamilyMember
	saveErr   error
	galErr    error
}

func newMemMemorialRepo() *memMemorialRepo {
	return &memMemorialRepo{
		memorials: map[string]*Memorial{},
		gallery:   map[string][]*GalleryItem{},
		family:    map[string][]*FamilyMember{},
	}
}

func (r *memMemorialRepo) CreateMemorial(ctx context.Context, m *Memorial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.memorials {
		if existing.Slug == m.Slug {
			return fmt.Errorf("duplicate entry for key 'slug'")
		}
	}
	cp := *m
	r.memorials[m.ID] = &cp
	return nil
}

func (r *memMemorialRepo) GetMemorial(ctx context.Context, id string) (*Memorial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memorials[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	cp.Gallery = r.gallery[id]
	cp.Family = r.family[id]
	return &cp, nil
}

func (r *memMemorialRepo) GetMemorialBySlug(ctx context.Context, slug string) (*Memorial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.memorials {
		if m.Slug == slug {
			cp := *m
			cp.Gallery = r.gallery[id]
			cp.Family = r.family[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMemorialRepo) ListMemorials(ctx context.Context, ownerID string) ([]*Memorial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Memorial
	for _, m := range r.memorials {
		if m.OwnerID == ownerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMemorialRepo) SaveMemorial(ctx context.Context, m *Memorial) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.memorials[m.ID] = &cp
	return nil
}

func (r *memMemorialRepo) ReplaceGallery(ctx context.Context, memorialID string, items []*GalleryItem) error {
	if r.galErr != nil {
		return r.galErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gallery[memorialID] = items
	return nil
}

func (r *memMemorialRepo) ReplaceFamily(ctx context.Context, memorialID string, members []*FamilyMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.family[memorialID] = members
	return nil
}

func (r *memMemorialRepo) DeleteMemorial(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memorials, id)
	delete(r.gallery, id)
	delete(r.family, id)
	return nil
}

func (r *memMemorialRepo) CountPublished(ctx context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.memorials {
		if m.OwnerID == ownerID && m.Status == "published" {
			n++
		}
	}
	return n, nil
}

type memGuestbookRepo struct {
	mu      sync.Mutex
	entries map[string]*GuestbookEntry
	order   []string // insertion order, oldest first
}

func newMemGuestbookRepo() *memGuestbookRepo {
	return &memGuestbookRepo{entries: map[string]*GuestbookEntry{}}
}

func (r *memGuestbookRepo) CreateEntry(ctx context.Context, entry *GuestbookEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entry.ID] = &cp
	r.order = append(r.order, entry.ID)
	return nil
}

func (r *memGuestbookRepo) GetEntry(ctx context.Context, id string) (*GuestbookEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memGuestbookRepo) UpdateEntry(ctx context.Context, entry *GuestbookEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *memGuestbookRepo) ListEntries(ctx context.Context, memorialID string, approvedOnly bool) ([]*GuestbookEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*GuestbookEntry
	// newest first
	for i := len(r.order) - 1; i >= 0; i-- {
		e := r.entries[r.order[i]]
		if e.MemorialID != memorialID {
			continue
		}
		if approvedOnly && e.Status != "approved" {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memGuestbookRepo) PendingCounts(ctx context.Context) ([]*PendingCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byMemorial := map[string]int64{}
	for _, e := range r.entries {
		if e.Status == "pending" {
			byMemorial[e.MemorialID]++
		}
	}
	var out []*PendingCount
	for id, n := range byMemorial {
		out = append(out, &PendingCount{MemorialID: id, Count: n})
	}
	return out, nil
}

// fakeTx runs the function directly; the in-memory repos have no
// transactions to join.
type fakeTx struct {
	execErr error
}

func (t *fakeTx) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.execErr != nil {
		return t.execErr
	}
	return fn(ctx)
}

// fakeLocker hands out the lock unconditionally unless told it is busy.
type fakeLocker struct {
	busy     bool
	acquired int
	released int
}

func (l *fakeLocker) LockPublish(ctx context.Context, identityID string) (func(), error) {
	if l.busy {
		return nil, fmt.Errorf("lock already taken")
	}
	l.acquired++
	return func() { l.released++ }, nil
}

// serialLocker is mutually exclusive for real: the second acquirer blocks
// until the first unlocks, the way the redis mutex serializes publishes.
type serialLocker struct {
	mu sync.Mutex
}

func (l *serialLocker) LockPublish(ctx context.Context, identityID string) (func(), error) {
	l.mu.Lock()
	return func() { l.mu.Unlock() }, nil
}

// fakeVerifier returns a canned event or error regardless of payload.
type fakeVerifier struct {
	event *PaymentEvent
	err   error
}

func (v *fakeVerifier) VerifyAndParse(payload []byte, signature string) (*PaymentEvent, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.event, nil
}

// fakeHasher is a transparent stand-in so auth tests do not pay argon2 cost.
type fakeHasher struct{}

func (fakeHasher) HashPassword(ctx context.Context, password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) VerifyPassword(ctx context.Context, password, encodedHash string) (bool, error) {
	return encodedHash == "hashed:"+password, nil
}
