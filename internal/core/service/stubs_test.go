package service

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub stores. One store instance backs accounts, orders and reviews
// so ReviewRepository.Commit can apply its three writes together, the way the
// Mongo transaction does.
// ---------------------------------------------------------------------------

type stubStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	orders   map[string]*domain.Order
	reviews  []*domain.Review
	products map[string]*domain.Product

	// conflicts makes the next N trust writes fail with a version conflict
	// after bumping the stored version, as a concurrent writer would.
	conflicts   int
	trustWrites int
	createErr   error
	// beforeOrderCreate runs at the start of CreateMany, outside the lock.
	beforeOrderCreate func()
}

func newStubStore() *stubStore {
	return &stubStore{
		accounts: make(map[string]*domain.Account),
		orders:   make(map[string]*domain.Order),
		products: make(map[string]*domain.Product),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.TrustHistory = slices.Clone(a.TrustHistory)
	c.Permissions = slices.Clone(a.Permissions)
	return &c
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	c.StatusHistory = slices.Clone(o.StatusHistory)
	return &c
}

func (s *stubStore) addAccount(a *domain.Account) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Version == 0 {
		a.Version = 1
	}
	s.accounts[a.ID] = cloneAccount(a)
	return a
}

func (s *stubStore) account(id string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAccount(s.accounts[id])
}

func (s *stubStore) addOrder(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
}

func (s *stubStore) order(id string) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id])
}

func (s *stubStore) reviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

// applyTrust must be called with mu held.
func (s *stubStore) applyTrust(u ports.TrustUpdate) error {
	s.trustWrites++
	a, ok := s.accounts[u.AccountID]
	if !ok {
		return domain.ErrUnknownAccount
	}
	if s.conflicts > 0 {
		s.conflicts--
		a.Version++
		return domain.ErrPersistenceConflict
	}
	if a.Version != u.ExpectedVersion {
		return domain.ErrPersistenceConflict
	}
	a.TrustScore = u.Score
	a.ReviewCount = u.ReviewCount
	a.TrustHistory = append(a.TrustHistory, u.Entry)
	a.Version++
	return nil
}

type stubAccountRepo struct{ *stubStore }

func (r stubAccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return domain.ErrAccountExists
		}
	}
	r.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrUnknownAccount
	}
	return cloneAccount(a), nil
}

func (r stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrUnknownAccount
}

func (r stubAccountRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.accounts {
		if a.Role == role {
			out = append(out, cloneAccount(a))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Account) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r stubAccountRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.Role]int64)
	for _, a := range r.accounts {
		out[a.Role]++
	}
	return out, nil
}

func (r stubAccountRepo) UpdateTrust(_ context.Context, u ports.TrustUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyTrust(u)
}

func (r stubAccountRepo) SetStatus(_ context.Context, id string, status domain.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrUnknownAccount
	}
	a.Status = status
	return nil
}

func (r stubAccountRepo) RecordLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrUnknownAccount
	}
	a.LoginCount++
	a.LastLogin = time.Now().UTC()
	return nil
}

type stubReviewRepo struct{ *stubStore }

func (r stubReviewRepo) Commit(_ context.Context, c ports.ReviewCommit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[c.Review.OrderID]
	if !ok || o.Status != domain.OrderDelivered {
		return domain.ErrOrderNotReviewable
	}
	if o.Reviewed {
		return domain.ErrAlreadyReviewed
	}
	// Trust write first: a conflict must leave the order and reviews untouched.
	if err := r.applyTrust(c.Trust); err != nil {
		return err
	}
	o.Reviewed = true
	rv := *c.Review
	r.reviews = append(r.reviews, &rv)
	return nil
}

func (r stubReviewRepo) ListByVendor(_ context.Context, vendorID string, page, limit int) ([]*domain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Review
	for _, rv := range r.reviews {
		if rv.VendorID == vendorID {
			all = append(all, rv)
		}
	}
	return paginate(all, page, limit), int64(len(all)), nil
}

type stubOrderRepo struct{ *stubStore }

// CreateMany is all-or-nothing and enforces the unique
// (customer, idempotency key, vendor) index.
func (r stubOrderRepo) CreateMany(_ context.Context, orders []*domain.Order) error {
	if r.beforeOrderCreate != nil {
		r.beforeOrderCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, o := range orders {
		if o.IdempotencyKey == "" {
			continue
		}
		for _, existing := range r.orders {
			if existing.CustomerID == o.CustomerID && existing.IdempotencyKey == o.IdempotencyKey && existing.VendorID == o.VendorID {
				return domain.ErrDuplicateCheckout
			}
		}
	}
	for _, o := range orders {
		r.orders[o.ID] = cloneOrder(o)
	}
	return nil
}

func (r stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r stubOrderRepo) FindByIdempotencyKey(_ context.Context, customerID, key string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID && o.IdempotencyKey == key {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r stubOrderRepo) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Order
	for _, o := range r.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.VendorID != "" && o.VendorID != f.VendorID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		all = append(all, cloneOrder(o))
	}
	slices.SortFunc(all, func(a, b *domain.Order) int { return cmp.Compare(a.ID, b.ID) })
	return paginate(all, f.Page, f.Limit), int64(len(all)), nil
}

func (r stubOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus, entry domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidTransition
	}
	o.Status = to
	o.StatusHistory = append(o.StatusHistory, entry)
	return nil
}

func (r stubOrderRepo) Stats(_ context.Context) (*ports.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := &ports.OrderStats{ByStatus: make(map[domain.OrderStatus]int64)}
	for _, o := range r.orders {
		st.ByStatus[o.Status]++
		if o.Status != domain.OrderCancelled {
			st.Revenue += o.TotalAmount
		}
	}
	return st, nil
}

type stubProductRepo struct {
	*stubStore
	setTrustErr error
	// afterCreate runs once the product is stored, outside the lock.
	afterCreate func()
	// beforeSetTrust runs before each SetVendorTrust, outside the lock.
	beforeSetTrust func(score float64)
}

func (r stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	c := *p
	r.products[p.ID] = &c
	r.mu.Unlock()
	if r.afterCreate != nil {
		r.afterCreate()
	}
	return nil
}

func (r stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r stubProductRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// List ignores MinTrust on purpose so the service-side trust filter is exercised.
func (r stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Product
	for _, p := range r.products {
		if f.VendorID != "" && p.VendorID != f.VendorID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		c := *p
		all = append(all, &c)
	}
	slices.SortFunc(all, func(a, b *domain.Product) int { return cmp.Compare(a.ID, b.ID) })
	return paginate(all, f.Page, f.Limit), int64(len(all)), nil
}

func (r stubProductRepo) SetVendorTrust(_ context.Context, vendorID string, score float64, version int64) error {
	if r.beforeSetTrust != nil {
		r.beforeSetTrust(score)
	}
	if r.setTrustErr != nil {
		return r.setTrustErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.VendorID == vendorID && p.TrustVersion < version {
			p.TrustScore = score
			p.TrustVersion = version
		}
	}
	return nil
}

func (s *stubStore) product(id string) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.products[id]
	return &c
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+limit, len(items))]
}

type stubCartStore struct {
	carts     map[string]*domain.Cart
	deleteErr error
}

func newStubCartStore() *stubCartStore {
	return &stubCartStore{carts: make(map[string]*domain.Cart)}
}

func (s *stubCartStore) Get(_ context.Context, customerID string) (*domain.Cart, error) {
	c, ok := s.carts[customerID]
	if !ok {
		return &domain.Cart{CustomerID: customerID}, nil
	}
	clone := *c
	clone.Items = slices.Clone(c.Items)
	return &clone, nil
}

func (s *stubCartStore) Save(_ context.Context, c *domain.Cart) error {
	clone := *c
	clone.Items = slices.Clone(c.Items)
	s.carts[c.CustomerID] = &clone
	return nil
}

func (s *stubCartStore) Delete(_ context.Context, customerID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.carts, customerID)
	return nil
}

type stubSecurityLog struct {
	mu     sync.Mutex
	events []*domain.SecurityEvent
	err    error
}

func (l *stubSecurityLog) Record(_ context.Context, e *domain.SecurityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.events = append(l.events, e)
	return nil
}

func (l *stubSecurityLog) ListByUser(_ context.Context, userID string, _ int) ([]*domain.SecurityEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*domain.SecurityEvent
	for _, e := range l.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *stubSecurityLog) has(event string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

type stubThrottle struct {
	failures map[string]int64
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int64)}
}

func (t *stubThrottle) RecordFailure(_ context.Context, id string, _ time.Duration) (int64, error) {
	t.failures[id]++
	return t.failures[id], nil
}

func (t *stubThrottle) Reset(_ context.Context, id string) error {
	delete(t.failures, id)
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []ports.TrustEvent
	err    error
}

func (p *stubPublisher) PublishTrustEvent(_ context.Context, e ports.TrustEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	customerActor = domain.Actor{ID: "cust-1", Role: domain.RoleCustomer, Email: "cust@example.com"}
	vendorActor   = domain.Actor{ID: "vend-1", Role: domain.RoleVendor, Email: "vend@example.com"}
	adminActor    = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Email: "admin@example.com"}
)

func seedMarketplace(st *stubStore) {
	st.addAccount(&domain.Account{ID: customerActor.ID, Name: "Carla", Email: customerActor.Email, Role: domain.RoleCustomer, TrustScore: 4, Status: domain.StatusActive})
	st.addAccount(&domain.Account{ID: vendorActor.ID, Name: "Green Farm", Email: vendorActor.Email, Role: domain.RoleVendor, TrustScore: 3, Status: domain.StatusActive})
	st.addAccount(&domain.Account{ID: adminActor.ID, Name: "Root", Email: adminActor.Email, Role: domain.RoleAdmin, TrustScore: 4, Status: domain.StatusActive})
}

func deliveredOrder(id string) *domain.Order {
	return &domain.Order{
		ID:               id,
		CustomerID:       customerActor.ID,
		VendorID:         vendorActor.ID,
		Status:           domain.OrderDelivered,
		VendorTrustScore: 3,
		TotalAmount:      10,
	}
}
