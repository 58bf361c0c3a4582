// Package memory provides an in-process store.Store used by tests and by the
// server when no MongoDB URI is configured.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

type txKey struct{}

// Store keeps every collection in maps guarded by a single mutex. A
// transaction holds the mutex for its whole duration and restores a snapshot
// of all collections when its function fails.
type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	orders     map[primitive.ObjectID]models.Order
	products   map[primitive.ObjectID]models.Product
	creators   map[primitive.ObjectID]models.Creator
	coupons    map[primitive.ObjectID]models.Coupon
	offers     map[primitive.ObjectID]models.Offer
	addresses  map[primitive.ObjectID]models.Address
	returns    map[primitive.ObjectID]models.Return
	reviews    map[primitive.ObjectID]models.Review
	payments   map[primitive.ObjectID]models.Transaction
	sessions   map[primitive.ObjectID]models.AuthSession
	users      map[primitive.ObjectID]models.User
	categories map[primitive.ObjectID]models.Category
	ledger     []models.SettlementEvent
}

var _ store.Store = (*Store)(nil)

// New constructs an empty memory store.
func New() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		orders:     make(map[primitive.ObjectID]models.Order),
		products:   make(map[primitive.ObjectID]models.Product),
		creators:   make(map[primitive.ObjectID]models.Creator),
		coupons:    make(map[primitive.ObjectID]models.Coupon),
		offers:     make(map[primitive.ObjectID]models.Offer),
		addresses:  make(map[primitive.ObjectID]models.Address),
		returns:    make(map[primitive.ObjectID]models.Return),
		reviews:    make(map[primitive.ObjectID]models.Review),
		payments:   make(map[primitive.ObjectID]models.Transaction),
		sessions:   make(map[primitive.ObjectID]models.AuthSession),
		users:      make(map[primitive.ObjectID]models.User),
		categories: make(map[primitive.ObjectID]models.Category),
	}
}

// clone copies every map. Stored values never share mutable slices with
// callers, so copying the structs is enough.
func (s *state) clone() *state {
	return &state{
		orders:     cloneMap(s.orders),
		products:   cloneMap(s.products),
		creators:   cloneMap(s.creators),
		coupons:    cloneMap(s.coupons),
		offers:     cloneMap(s.offers),
		addresses:  cloneMap(s.addresses),
		returns:    cloneMap(s.returns),
		reviews:    cloneMap(s.reviews),
		payments:   cloneMap(s.payments),
		sessions:   cloneMap(s.sessions),
		users:      cloneMap(s.users),
		categories: cloneMap(s.categories),
		ledger:     slices.Clone(s.ledger),
	}
}

func cloneMap[T any](in map[primitive.ObjectID]T) map[primitive.ObjectID]T {
	out := make(map[primitive.ObjectID]T, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// lock acquires the store mutex unless ctx already belongs to a transaction
// on this store.
func (s *Store) lock(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTx implements store.Transactor. Nested calls join the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func find[T any](items map[primitive.ObjectID]T, id primitive.ObjectID) (T, error) {
	item, ok := items[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	return item, nil
}

func replace[T any](items map[primitive.ObjectID]T, id primitive.ObjectID, item T) error {
	if _, ok := items[id]; !ok {
		return store.ErrNotFound
	}
	items[id] = item
	return nil
}

func remove[T any](items map[primitive.ObjectID]T, id primitive.ObjectID) error {
	if _, ok := items[id]; !ok {
		return store.ErrNotFound
	}
	delete(items, id)
	return nil
}

// newestFirst sorts by creation time descending, breaking ties on id.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) primitive.ObjectID) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]).Hex() > id(items[j]).Hex()
	})
}

func paginate[T any](items []T, page store.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	skip := page.Skip()
	if skip < 0 || skip >= int64(len(items)) {
		return []T{}
	}
	end := skip + page.Limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	return items[skip:end]
}

func matchesID(want *primitive.ObjectID, got primitive.ObjectID) bool {
	return want == nil || *want == got
}

/* ===== ORDERS ===== */

func cloneOrder(o models.Order) models.Order {
	o.ProductOrdered = slices.Clone(o.ProductOrdered)
	o.SizeOrdered = slices.Clone(o.SizeOrdered)
	o.QuantityOrdered = slices.Clone(o.QuantityOrdered)
	return o
}

func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	defer s.lock(ctx)()
	ensureID(&order.ID)
	s.data.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *Store) FindOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer s.lock(ctx)()
	order, err := find(s.data.orders, id)
	return cloneOrder(order), err
}

func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter, page store.Page) ([]models.Order, int64, error) {
	defer s.lock(ctx)()
	matched := make([]models.Order, 0)
	for _, o := range s.data.orders {
		if !matchesID(filter.UserID, o.UserID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	newestFirst(matched, func(o models.Order) time.Time { return o.CreatedAt }, func(o models.Order) primitive.ObjectID { return o.ID })
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error {
	defer s.lock(ctx)()
	order, err := find(s.data.orders, id)
	if err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = at
	s.data.orders[id] = order
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.orders, id)
}

func (s *Store) CountOrdersByTransaction(ctx context.Context, transactionID primitive.ObjectID) (int64, error) {
	defer s.lock(ctx)()
	var n int64
	for _, o := range s.data.orders {
		if o.TransactionID == transactionID {
			n++
		}
	}
	return n, nil
}

/* ===== PRODUCTS ===== */

func (s *Store) InsertProduct(ctx context.Context, product *models.Product) error {
	defer s.lock(ctx)()
	ensureID(&product.ID)
	p := *product
	p.Category = slices.Clone(p.Category)
	s.data.products[p.ID] = p
	return nil
}

func (s *Store) FindProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	defer s.lock(ctx)()
	return find(s.data.products, id)
}

func (s *Store) ListProducts(ctx context.Context, filter store.ProductFilter, page store.Page) ([]models.Product, int64, error) {
	defer s.lock(ctx)()
	matched := make([]models.Product, 0)
	for _, p := range s.data.products {
		if filter.CreatorID != nil && (p.Creator == nil || *p.Creator != *filter.CreatorID) {
			continue
		}
		if filter.CategoryID != nil && !p.Category.Contains(*filter.CategoryID) {
			continue
		}
		matched = append(matched, p)
	}
	newestFirst(matched, func(p models.Product) time.Time { return p.CreatedAt }, func(p models.Product) primitive.ObjectID { return p.ID })
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) UpdateProductDetails(ctx context.Context, product models.Product) error {
	defer s.lock(ctx)()
	existing, err := find(s.data.products, product.ID)
	if err != nil {
		return err
	}
	product.SalesCount = existing.SalesCount
	product.Creator = existing.Creator
	product.Category = slices.Clone(product.Category)
	s.data.products[product.ID] = product
	return nil
}

func (s *Store) IncProductSales(ctx context.Context, id primitive.ObjectID, delta int) error {
	defer s.lock(ctx)()
	p, err := find(s.data.products, id)
	if err != nil {
		return err
	}
	p.SalesCount += delta
	s.data.products[id] = p
	return nil
}

func (s *Store) SetProductSales(ctx context.Context, id primitive.ObjectID, count int) error {
	defer s.lock(ctx)()
	p, err := find(s.data.products, id)
	if err != nil {
		return err
	}
	p.SalesCount = count
	s.data.products[id] = p
	return nil
}

func (s *Store) SetProductRating(ctx context.Context, id primitive.ObjectID, rating float64, at time.Time) error {
	defer s.lock(ctx)()
	p, err := find(s.data.products, id)
	if err != nil {
		return err
	}
	p.Rating = rating
	p.UpdatedAt = at
	s.data.products[id] = p
	return nil
}

/* ===== CREATORS ===== */

func (s *Store) InsertCreator(ctx context.Context, creator *models.Creator) error {
	defer s.lock(ctx)()
	ensureID(&creator.ID)
	s.data.creators[creator.ID] = *creator
	return nil
}

func (s *Store) FindCreator(ctx context.Context, id primitive.ObjectID) (models.Creator, error) {
	defer s.lock(ctx)()
	return find(s.data.creators, id)
}

func (s *Store) ListCreators(ctx context.Context) ([]models.Creator, error) {
	defer s.lock(ctx)()
	out := make([]models.Creator, 0, len(s.data.creators))
	for _, c := range s.data.creators {
		out = append(out, c)
	}
	newestFirst(out, func(c models.Creator) time.Time { return c.CreatedAt }, func(c models.Creator) primitive.ObjectID { return c.ID })
	return out, nil
}

func (s *Store) IncCreatorSales(ctx context.Context, id primitive.ObjectID, delta float64) error {
	defer s.lock(ctx)()
	c, err := find(s.data.creators, id)
	if err != nil {
		return err
	}
	c.TotalSales += delta
	s.data.creators[id] = c
	return nil
}

func (s *Store) SetCreatorSales(ctx context.Context, id primitive.ObjectID, total float64) error {
	defer s.lock(ctx)()
	c, err := find(s.data.creators, id)
	if err != nil {
		return err
	}
	c.TotalSales = total
	s.data.creators[id] = c
	return nil
}

/* ===== COUPONS ===== */

func (s *Store) couponCodeTaken(code string, except primitive.ObjectID) bool {
	for id, c := range s.data.coupons {
		if id != except && c.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) InsertCoupon(ctx context.Context, coupon *models.Coupon) error {
	defer s.lock(ctx)()
	if s.couponCodeTaken(coupon.Code, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	ensureID(&coupon.ID)
	s.data.coupons[coupon.ID] = *coupon
	return nil
}

func (s *Store) FindCoupon(ctx context.Context, id primitive.ObjectID) (models.Coupon, error) {
	defer s.lock(ctx)()
	return find(s.data.coupons, id)
}

func (s *Store) FindCouponByCode(ctx context.Context, code string) (models.Coupon, error) {
	defer s.lock(ctx)()
	for _, c := range s.data.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return models.Coupon{}, store.ErrNotFound
}

func (s *Store) ListCoupons(ctx context.Context, page store.Page) ([]models.Coupon, int64, error) {
	defer s.lock(ctx)()
	out := make([]models.Coupon, 0, len(s.data.coupons))
	for _, c := range s.data.coupons {
		out = append(out, c)
	}
	newestFirst(out, func(c models.Coupon) time.Time { return c.CreatedAt }, func(c models.Coupon) primitive.ObjectID { return c.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (s *Store) ReplaceCoupon(ctx context.Context, coupon models.Coupon) error {
	defer s.lock(ctx)()
	if s.couponCodeTaken(coupon.Code, coupon.ID) {
		return store.ErrDuplicate
	}
	return replace(s.data.coupons, coupon.ID, coupon)
}

func (s *Store) DeleteCoupon(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.coupons, id)
}

/* ===== OFFERS ===== */

func cloneOffer(o models.Offer) models.Offer {
	o.ApplicableOn = slices.Clone(o.ApplicableOn)
	return o
}

func (s *Store) offerCodeTaken(code string, except primitive.ObjectID) bool {
	if strings.TrimSpace(code) == "" {
		return false
	}
	for id, o := range s.data.offers {
		if id != except && o.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) InsertOffer(ctx context.Context, offer *models.Offer) error {
	defer s.lock(ctx)()
	if s.offerCodeTaken(offer.Code, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	ensureID(&offer.ID)
	s.data.offers[offer.ID] = cloneOffer(*offer)
	return nil
}

func (s *Store) FindOffer(ctx context.Context, id primitive.ObjectID) (models.Offer, error) {
	defer s.lock(ctx)()
	offer, err := find(s.data.offers, id)
	return cloneOffer(offer), err
}

func (s *Store) FindOfferByCode(ctx context.Context, code string) (models.Offer, error) {
	defer s.lock(ctx)()
	for _, o := range s.data.offers {
		if o.Code == code {
			return cloneOffer(o), nil
		}
	}
	return models.Offer{}, store.ErrNotFound
}

func (s *Store) ListOffers(ctx context.Context, page store.Page) ([]models.Offer, int64, error) {
	defer s.lock(ctx)()
	out := make([]models.Offer, 0, len(s.data.offers))
	for _, o := range s.data.offers {
		out = append(out, cloneOffer(o))
	}
	newestFirst(out, func(o models.Offer) time.Time { return o.CreatedAt }, func(o models.Offer) primitive.ObjectID { return o.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (s *Store) ReplaceOffer(ctx context.Context, offer models.Offer) error {
	defer s.lock(ctx)()
	if s.offerCodeTaken(offer.Code, offer.ID) {
		return store.ErrDuplicate
	}
	return replace(s.data.offers, offer.ID, cloneOffer(offer))
}

func (s *Store) DeleteOffer(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.offers, id)
}

/* ===== ADDRESSES ===== */

func (s *Store) InsertAddress(ctx context.Context, address *models.Address) error {
	defer s.lock(ctx)()
	ensureID(&address.ID)
	s.data.addresses[address.ID] = *address
	return nil
}

func (s *Store) FindAddress(ctx context.Context, id primitive.ObjectID) (models.Address, error) {
	defer s.lock(ctx)()
	return find(s.data.addresses, id)
}

func (s *Store) ListAddresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	defer s.lock(ctx)()
	out := make([]models.Address, 0)
	for _, a := range s.data.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	newestFirst(out, func(a models.Address) time.Time { return a.CreatedAt }, func(a models.Address) primitive.ObjectID { return a.ID })
	return out, nil
}

func (s *Store) ReplaceAddress(ctx context.Context, address models.Address) error {
	defer s.lock(ctx)()
	return replace(s.data.addresses, address.ID, address)
}

func (s *Store) DeleteAddress(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.addresses, id)
}

func (s *Store) ClearDefaultAddress(ctx context.Context, userID primitive.ObjectID) error {
	defer s.lock(ctx)()
	for id, a := range s.data.addresses {
		if a.UserID == userID && a.Default {
			a.Default = false
			s.data.addresses[id] = a
		}
	}
	return nil
}

/* ===== RETURNS ===== */

func (s *Store) InsertReturn(ctx context.Context, ret *models.Return) error {
	defer s.lock(ctx)()
	for _, existing := range s.data.returns {
		if existing.OrderID == ret.OrderID {
			return store.ErrDuplicate
		}
	}
	ensureID(&ret.ID)
	s.data.returns[ret.ID] = *ret
	return nil
}

func (s *Store) FindReturn(ctx context.Context, id primitive.ObjectID) (models.Return, error) {
	defer s.lock(ctx)()
	return find(s.data.returns, id)
}

func (s *Store) FindReturnByOrder(ctx context.Context, orderID primitive.ObjectID) (models.Return, error) {
	defer s.lock(ctx)()
	for _, r := range s.data.returns {
		if r.OrderID == orderID {
			return r, nil
		}
	}
	return models.Return{}, store.ErrNotFound
}

func (s *Store) ListReturns(ctx context.Context, filter store.ReturnFilter, page store.Page) ([]models.Return, int64, error) {
	defer s.lock(ctx)()
	matched := make([]models.Return, 0)
	for _, r := range s.data.returns {
		if !matchesID(filter.UserID, r.UserID) || !matchesID(filter.OrderID, r.OrderID) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		matched = append(matched, r)
	}
	newestFirst(matched, func(r models.Return) time.Time { return r.CreatedAt }, func(r models.Return) primitive.ObjectID { return r.ID })
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) ReplaceReturn(ctx context.Context, ret models.Return) error {
	defer s.lock(ctx)()
	return replace(s.data.returns, ret.ID, ret)
}

func (s *Store) DeleteReturn(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.returns, id)
}

/* ===== REVIEWS ===== */

func (s *Store) InsertReview(ctx context.Context, review *models.Review) error {
	defer s.lock(ctx)()
	for _, existing := range s.data.reviews {
		if existing.ProductID == review.ProductID && existing.UserID == review.UserID {
			return store.ErrDuplicate
		}
	}
	ensureID(&review.ID)
	s.data.reviews[review.ID] = *review
	return nil
}

func (s *Store) FindReview(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	defer s.lock(ctx)()
	return find(s.data.reviews, id)
}

func (s *Store) ListReviews(ctx context.Context, filter store.ReviewFilter, page store.Page) ([]models.Review, int64, error) {
	defer s.lock(ctx)()
	matched := make([]models.Review, 0)
	for _, r := range s.data.reviews {
		if matchesID(filter.ProductID, r.ProductID) && matchesID(filter.UserID, r.UserID) {
			matched = append(matched, r)
		}
	}
	newestFirst(matched, func(r models.Review) time.Time { return r.CreatedAt }, func(r models.Review) primitive.ObjectID { return r.ID })
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) ReplaceReview(ctx context.Context, review models.Review) error {
	defer s.lock(ctx)()
	return replace(s.data.reviews, review.ID, review)
}

func (s *Store) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.reviews, id)
}

/* ===== TRANSACTIONS ===== */

func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	defer s.lock(ctx)()
	if _, ok := s.data.payments[tx.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range s.data.payments {
		if existing.OrderID == tx.OrderID {
			return store.ErrDuplicate
		}
	}
	ensureID(&tx.ID)
	s.data.payments[tx.ID] = *tx
	return nil
}

func (s *Store) FindTransaction(ctx context.Context, id primitive.ObjectID) (models.Transaction, error) {
	defer s.lock(ctx)()
	return find(s.data.payments, id)
}

func (s *Store) FindTransactionByOrder(ctx context.Context, orderID primitive.ObjectID) (models.Transaction, error) {
	defer s.lock(ctx)()
	for _, t := range s.data.payments {
		if t.OrderID == orderID {
			return t, nil
		}
	}
	return models.Transaction{}, store.ErrNotFound
}

func (s *Store) ListTransactions(ctx context.Context, filter store.TransactionFilter, page store.Page) ([]models.Transaction, int64, error) {
	defer s.lock(ctx)()
	matched := make([]models.Transaction, 0)
	for _, t := range s.data.payments {
		if matchesID(filter.UserID, t.UserID) {
			matched = append(matched, t)
		}
	}
	newestFirst(matched, func(t models.Transaction) time.Time { return t.CreatedAt }, func(t models.Transaction) primitive.ObjectID { return t.ID })
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) ReplaceTransaction(ctx context.Context, tx models.Transaction) error {
	defer s.lock(ctx)()
	return replace(s.data.payments, tx.ID, tx)
}

func (s *Store) DeleteTransaction(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.payments, id)
}

/* ===== SESSIONS & USERS ===== */

func (s *Store) InsertSession(ctx context.Context, session *models.AuthSession) error {
	defer s.lock(ctx)()
	ensureID(&session.ID)
	s.data.sessions[session.ID] = *session
	return nil
}

func (s *Store) FindSession(ctx context.Context, accessToken, refreshToken string) (models.AuthSession, error) {
	defer s.lock(ctx)()
	for _, sess := range s.data.sessions {
		if sess.AccessToken == accessToken && sess.RefreshToken == refreshToken {
			return sess, nil
		}
	}
	return models.AuthSession{}, store.ErrNotFound
}

func (s *Store) DeleteSession(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	return remove(s.data.sessions, id)
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	defer s.lock(ctx)()
	for _, u := range s.data.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	ensureID(&user.ID)
	s.data.users[user.ID] = *user
	return nil
}

func (s *Store) FindUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer s.lock(ctx)()
	return find(s.data.users, id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	defer s.lock(ctx)()
	for _, u := range s.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *Store) SetUserStatus(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) error {
	defer s.lock(ctx)()
	user, err := find(s.data.users, id)
	if err != nil {
		return err
	}
	user.Status = active
	user.ModifiedAt = at
	s.data.users[id] = user
	return nil
}

/* ===== CATEGORIES ===== */

func (s *Store) categoryNameTaken(name string, except primitive.ObjectID) bool {
	for id, c := range s.data.categories {
		if id != except && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) InsertCategory(ctx context.Context, category *models.Category) error {
	defer s.lock(ctx)()
	if s.categoryNameTaken(category.Name, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	ensureID(&category.ID)
	s.data.categories[category.ID] = *category
	return nil
}

func (s *Store) FindCategory(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	defer s.lock(ctx)()
	return find(s.data.categories, id)
}

func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	defer s.lock(ctx)()
	out := make([]models.Category, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	newestFirst(out, func(c models.Category) time.Time { return c.CreatedAt }, func(c models.Category) primitive.ObjectID { return c.ID })
	return out, nil
}

func (s *Store) ReplaceCategory(ctx context.Context, category models.Category) error {
	defer s.lock(ctx)()
	if s.categoryNameTaken(category.Name, category.ID) {
		return store.ErrDuplicate
	}
	return replace(s.data.categories, category.ID, category)
}

/* ===== LEDGER ===== */

func (s *Store) AppendSettlementEvents(ctx context.Context, events []models.SettlementEvent) error {
	defer s.lock(ctx)()
	for _, ev := range events {
		for _, existing := range s.data.ledger {
			if existing.ID == ev.ID {
				return store.ErrDuplicate
			}
		}
	}
	s.data.ledger = append(s.data.ledger, events...)
	return nil
}

func (s *Store) ListSettlementEvents(ctx context.Context, filter store.LedgerFilter) ([]models.SettlementEvent, error) {
	defer s.lock(ctx)()
	out := make([]models.SettlementEvent, 0)
	for _, ev := range s.data.ledger {
		if !matchesID(filter.OrderID, ev.OrderID) || !matchesID(filter.ProductID, ev.ProductID) {
			continue
		}
		if filter.CreatorID != nil && (ev.CreatorID == nil || *ev.CreatorID != *filter.CreatorID) {
			continue
		}
		if filter.Kind != "" && ev.Kind != filter.Kind {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
