package settlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/events"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
	"github.com/ZODIAC3K/refactor-capstone/internal/store/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

// failingLedger breaks the last write of order placement.
type failingLedger struct {
	*memory.Store
}

func (f failingLedger) AppendSettlementEvents(context.Context, []models.SettlementEvent) error {
	return errors.New("ledger unavailable")
}

type fixture struct {
	st        *memory.Store
	svc       *Service
	pub       *recordingPublisher
	buyer     auth.Actor
	admin     auth.Actor
	creator   models.Creator
	product   models.Product
	other     models.Product
	address   models.Address
	offer     models.Offer
	coupon    models.Coupon
	ctx       context.Context
	idCounter int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		st:    memory.New(),
		pub:   &recordingPublisher{},
		buyer: auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser},
		admin: auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin},
		ctx:   context.Background(),
	}
	f.seed(t)
	f.svc = f.newService(t, f.st, false)
	return f
}

func (f *fixture) newService(t *testing.T, st Store, rejectDup bool) *Service {
	t.Helper()
	svc, err := NewService(ServiceDeps{
		Store:     st,
		Publisher: f.pub,
		Clock:     func() time.Time { return testNow },
		IDs: func() string {
			f.idCounter++
			return fmt.Sprintf("evt-%04d", f.idCounter)
		},
		RejectDuplicateTransaction: rejectDup,
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.creator = models.Creator{Name: "Mira", CreatedAt: testNow}
	require.NoError(t, f.st.InsertCreator(f.ctx, &f.creator))

	f.product = models.Product{Title: "Tee", Creator: &f.creator.ID, Price: models.Price{Amount: 500, Currency: "INR"}}
	require.NoError(t, f.st.InsertProduct(f.ctx, &f.product))
	f.other = models.Product{Title: "Cap", Creator: &f.creator.ID, Price: models.Price{Amount: 250, Currency: "INR"}}
	require.NoError(t, f.st.InsertProduct(f.ctx, &f.other))

	f.address = models.Address{UserID: f.buyer.UserID, Default: true}
	require.NoError(t, f.st.InsertAddress(f.ctx, &f.address))

	f.offer = models.Offer{OfferDiscount: 20, Code: "TEE20", ApplicableOn: models.IDList{f.product.ID}}
	require.NoError(t, f.st.InsertOffer(f.ctx, &f.offer))

	f.coupon = models.Coupon{Discount: 10, Code: "WELCOME10", EndAt: testNow.Add(24 * time.Hour)}
	require.NoError(t, f.st.InsertCoupon(f.ctx, &f.coupon))
}

func (f *fixture) request(lines ...primitive.ObjectID) OrderRequest {
	req := OrderRequest{AddressID: f.address.ID, TransactionID: primitive.NewObjectID()}
	for _, id := range lines {
		req.ProductIDs = append(req.ProductIDs, id)
		req.Sizes = append(req.Sizes, "M")
		req.Quantities = append(req.Quantities, 2)
	}
	return req
}

func (f *fixture) counters(t *testing.T) (int, int, float64) {
	t.Helper()
	p, err := f.st.FindProduct(f.ctx, f.product.ID)
	require.NoError(t, err)
	o, err := f.st.FindProduct(f.ctx, f.other.ID)
	require.NoError(t, err)
	c, err := f.st.FindCreator(f.ctx, f.creator.ID)
	require.NoError(t, err)
	return p.SalesCount, o.SalesCount, c.TotalSales
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.st.ListOrders(f.ctx, store.OrderFilter{}, store.Page{})
	require.NoError(t, err)
	return total
}

func (f *fixture) deliveredOrder(t *testing.T) models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)
	require.NoError(t, f.st.SetOrderStatus(f.ctx, order.ID, models.OrderStatusDelivered, testNow))
	order.Status = models.OrderStatusDelivered
	return order
}

/* ===== ORDERS ===== */

func TestCreateOrderAppliesOfferThenCoupon(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.product.ID)
	req.OfferID = &f.offer.ID
	req.CouponID = &f.coupon.ID

	order, err := f.svc.CreateOrder(f.ctx, f.buyer, req)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, 1000.0, order.TotalAmount)
	require.Equal(t, 720.0, order.AmountPaid)
	require.Equal(t, f.buyer.UserID, order.UserID)

	stored, err := f.st.FindOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 720.0, stored.AmountPaid)

	sales, _, total := f.counters(t)
	require.Equal(t, 2, sales)
	require.Equal(t, 1000.0, total)

	require.Len(t, f.pub.events, 1)
	require.Equal(t, events.OrderCreated, f.pub.events[0].Type)
	require.Equal(t, order.ID.Hex(), f.pub.events[0].OrderID)
}

func TestCreateOrderOfferIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.product.ID, f.other.ID)
	req.OfferID = &f.offer.ID

	_, err := f.svc.CreateOrder(f.ctx, f.buyer, req)
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
	require.Equal(t, "Offer cannot be applied - not all products are eligible", apperr.Message(err))

	require.Zero(t, f.orderCount(t))
	sales, otherSales, total := f.counters(t)
	require.Zero(t, sales)
	require.Zero(t, otherSales)
	require.Zero(t, total)
	require.Empty(t, f.pub.events)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	expired := models.Coupon{Discount: 5, Code: "OLD", EndAt: testNow.Add(-time.Hour)}
	require.NoError(t, f.st.InsertCoupon(f.ctx, &expired))
	missing := primitive.NewObjectID()

	cases := []struct {
		name  string
		actor auth.Actor
		edit  func(*OrderRequest)
		kind  apperr.Kind
		msg   string
	}{
		{"no actor", auth.Actor{}, func(*OrderRequest) {}, apperr.AuthenticationMissing, "No access token provided"},
		{"empty lines", f.buyer, func(r *OrderRequest) { r.ProductIDs = nil }, apperr.ValidationFailed, "Product, size, and quantity details are required"},
		{"length mismatch", f.buyer, func(r *OrderRequest) { r.Sizes = append(r.Sizes, "L") }, apperr.ValidationFailed, "Product, size, and quantity arrays must have same length"},
		{"zero quantity", f.buyer, func(r *OrderRequest) { r.Quantities[0] = 0 }, apperr.ValidationFailed, "Quantity must be greater than zero"},
		{"missing transaction", f.buyer, func(r *OrderRequest) { r.TransactionID = primitive.NilObjectID }, apperr.ValidationFailed, "Transaction ID is required"},
		{"unknown product", f.buyer, func(r *OrderRequest) { r.ProductIDs[0] = missing }, apperr.ValidationFailed, "Product not found: " + missing.Hex()},
		{"unknown offer", f.buyer, func(r *OrderRequest) { r.OfferID = &missing }, apperr.ValidationFailed, "Invalid offer"},
		{"unknown coupon", f.buyer, func(r *OrderRequest) { r.CouponID = &missing }, apperr.ValidationFailed, "Invalid coupon"},
		{"expired coupon", f.buyer, func(r *OrderRequest) { r.CouponID = &expired.ID }, apperr.ValidationFailed, "Coupon has expired"},
		{"unknown address", f.buyer, func(r *OrderRequest) { r.AddressID = missing }, apperr.ValidationFailed, "Invalid address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request(f.product.ID)
			tc.edit(&req)
			_, err := f.svc.CreateOrder(f.ctx, tc.actor, req)
			require.Equal(t, tc.kind, apperr.KindOf(err))
			require.Equal(t, tc.msg, apperr.Message(err))
		})
	}
	require.Zero(t, f.orderCount(t))
}

func TestCreateOrderRollsBackWhenSettlementFails(t *testing.T) {
	f := newFixture(t)
	svc := f.newService(t, failingLedger{f.st}, false)

	_, err := svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.Equal(t, apperr.Internal, apperr.KindOf(err))

	require.Zero(t, f.orderCount(t))
	sales, _, total := f.counters(t)
	require.Zero(t, sales)
	require.Zero(t, total)
	require.Empty(t, f.pub.events)
}

func TestCreateOrderDuplicateTransaction(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.product.ID)

	_, err := f.svc.CreateOrder(f.ctx, f.buyer, req)
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(f.ctx, f.buyer, req)
	require.NoError(t, err)
	require.EqualValues(t, 2, f.orderCount(t))

	strict := f.newService(t, f.st, true)
	_, err = strict.CreateOrder(f.ctx, f.buyer, req)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
	require.EqualValues(t, 2, f.orderCount(t))
}

func TestCreateOrderSucceedsWhenPublishFails(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("topic gone")

	_, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)
	require.EqualValues(t, 1, f.orderCount(t))
}

func TestDeleteOrderRestoresCounters(t *testing.T) {
	f := newFixture(t)
	req := f.request(f.product.ID, f.other.ID)
	req.CouponID = &f.coupon.ID

	order, err := f.svc.CreateOrder(f.ctx, f.buyer, req)
	require.NoError(t, err)
	sales, otherSales, total := f.counters(t)
	require.Equal(t, 2, sales)
	require.Equal(t, 2, otherSales)
	require.Equal(t, 1500.0, total)

	require.NoError(t, f.svc.DeleteOrder(f.ctx, f.buyer, order.ID))

	sales, otherSales, total = f.counters(t)
	require.Zero(t, sales)
	require.Zero(t, otherSales)
	require.Zero(t, total)
	_, err = f.st.FindOrder(f.ctx, order.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	entries, err := f.st.ListSettlementEvents(f.ctx, store.LedgerFilter{OrderID: &order.ID})
	require.NoError(t, err)
	require.Len(t, entries, 4)
}

func TestDeleteOrderUsesPlacementAmountsAfterPriceChange(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	repriced := f.product
	repriced.Price.Amount = 800
	require.NoError(t, f.st.UpdateProductDetails(f.ctx, repriced))

	require.NoError(t, f.svc.DeleteOrder(f.ctx, f.buyer, order.ID))
	_, _, total := f.counters(t)
	require.Zero(t, total)
}

func TestDeleteOrderGuards(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	stranger := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	err = f.svc.DeleteOrder(f.ctx, stranger, order.ID)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	require.Equal(t, "Unauthorized to delete this order", apperr.Message(err))

	require.NoError(t, f.st.SetOrderStatus(f.ctx, order.ID, models.OrderStatusProcessing, testNow))
	err = f.svc.DeleteOrder(f.ctx, f.buyer, order.ID)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	require.Equal(t, "Only pending orders can be deleted", apperr.Message(err))

	err = f.svc.DeleteOrder(f.ctx, f.buyer, primitive.NewObjectID())
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))

	sales, _, _ := f.counters(t)
	require.Equal(t, 2, sales)
}

func TestGetAndListOrders(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	got, err := f.svc.GetOrder(f.ctx, f.buyer, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetOrder(f.ctx, auth.Actor{UserID: primitive.NewObjectID()}, order.ID)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = f.svc.GetOrder(f.ctx, f.admin, order.ID)
	require.NoError(t, err)

	orders, total, err := f.svc.ListOrders(f.ctx, f.buyer, ListOptions{Page: store.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, orders, 1)

	_, _, err = f.svc.ListOrders(f.ctx, f.buyer, ListOptions{All: true})
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	orders, _, err = f.svc.ListOrders(f.ctx, f.admin, ListOptions{All: true})
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestUpdateOrderStatusFollowsFulfilment(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	_, err = f.svc.UpdateOrderStatus(f.ctx, f.buyer, order.ID, models.OrderStatusProcessing)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = f.svc.UpdateOrderStatus(f.ctx, f.admin, order.ID, models.OrderStatusShipped)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = f.svc.UpdateOrderStatus(f.ctx, f.admin, order.ID, "Lost")
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	for _, status := range []string{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		updated, err := f.svc.UpdateOrderStatus(f.ctx, f.admin, order.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, updated.Status)
	}
}

/* ===== RETURNS ===== */

func TestCreateReturnOncePerOrder(t *testing.T) {
	f := newFixture(t)
	order := f.deliveredOrder(t)
	req := ReturnRequest{OrderID: order.ID, Reason: "Too small <b>really</b>", AddressID: f.address.ID}

	ret, err := f.svc.CreateReturn(f.ctx, f.buyer, req)
	require.NoError(t, err)
	require.Equal(t, models.ReturnStatusRequested, ret.Status)
	require.Equal(t, "Too small really", ret.ReturnReason)

	stored, err := f.st.FindOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusReturnRequested, stored.Status)

	_, err = f.svc.CreateReturn(f.ctx, f.buyer, req)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
	require.Equal(t, "Return already requested for this order", apperr.Message(err))

	returns, total, err := f.st.ListReturns(f.ctx, store.ReturnFilter{OrderID: &order.ID}, store.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, ret.ID, returns[0].ID)
}

func TestCreateReturnGuards(t *testing.T) {
	f := newFixture(t)
	pending, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	_, err = f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: pending.ID, Reason: "x", AddressID: f.address.ID})
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))
	require.Equal(t, "Only delivered orders can be returned", apperr.Message(err))

	order := f.deliveredOrder(t)
	_, err = f.svc.CreateReturn(f.ctx, auth.Actor{UserID: primitive.NewObjectID()}, ReturnRequest{OrderID: order.ID, Reason: "x", AddressID: f.address.ID})
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "x", AddressID: primitive.NewObjectID()})
	require.Equal(t, "Invalid return address", apperr.Message(err))

	_, err = f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "<script></script>", AddressID: f.address.ID})
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: primitive.NewObjectID(), Reason: "x", AddressID: f.address.ID})
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCancelReturnOnlyWhileRequested(t *testing.T) {
	f := newFixture(t)
	order := f.deliveredOrder(t)
	ret, err := f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "Wrong colour", AddressID: f.address.ID})
	require.NoError(t, err)

	_, err = f.svc.ReviewReturn(f.ctx, f.admin, ReviewInput{ID: ret.ID, Status: models.ReturnStatusApproved})
	require.NoError(t, err)

	err = f.svc.CancelReturn(f.ctx, f.buyer, ret.ID)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	require.Equal(t, "Only pending return requests can be cancelled", apperr.Message(err))

	stored, err := f.st.FindReturn(f.ctx, ret.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReturnStatusApproved, stored.Status)
	storedOrder, err := f.st.FindOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusReturnApproved, storedOrder.Status)
}

func TestCancelReturnRestoresDelivered(t *testing.T) {
	f := newFixture(t)
	order := f.deliveredOrder(t)
	ret, err := f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "Changed mind", AddressID: f.address.ID})
	require.NoError(t, err)

	err = f.svc.CancelReturn(f.ctx, auth.Actor{UserID: primitive.NewObjectID()}, ret.ID)
	require.Equal(t, "Unauthorized to cancel this return request", apperr.Message(err))

	cancelled, err := f.svc.UpdateReturn(f.ctx, f.buyer, ReviewInput{ID: ret.ID, Status: models.ReturnStatusCancelled})
	require.NoError(t, err)
	require.Equal(t, models.ReturnStatusCancelled, cancelled.Status)

	_, err = f.st.FindReturn(f.ctx, ret.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	storedOrder, err := f.st.FindOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusDelivered, storedOrder.Status)

	_, err = f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "Again", AddressID: f.address.ID})
	require.NoError(t, err)
}

func TestReviewReturnToCompletionReversesSales(t *testing.T) {
	f := newFixture(t)
	order := f.deliveredOrder(t)
	ret, err := f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "Torn seam", AddressID: f.address.ID})
	require.NoError(t, err)

	_, err = f.svc.ReviewReturn(f.ctx, f.buyer, ReviewInput{ID: ret.ID, Status: models.ReturnStatusApproved})
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = f.svc.ReviewReturn(f.ctx, f.admin, ReviewInput{ID: ret.ID, Status: models.ReturnStatusCompleted})
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	notes := "Refund issued"
	refund := primitive.NewObjectID()
	steps := []struct{ status, orderStatus string }{
		{models.ReturnStatusApproved, models.OrderStatusReturnApproved},
		{models.ReturnStatusProcessing, models.OrderStatusReturnProcess},
		{models.ReturnStatusCompleted, models.OrderStatusReturned},
	}
	for _, step := range steps {
		updated, err := f.svc.ReviewReturn(f.ctx, f.admin, ReviewInput{ID: ret.ID, Status: step.status, AdminNotes: &notes, RefundTransactionID: &refund})
		require.NoError(t, err)
		require.Equal(t, step.status, updated.Status)
		storedOrder, err := f.st.FindOrder(f.ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, step.orderStatus, storedOrder.Status)
	}

	stored, err := f.st.FindReturn(f.ctx, ret.ID)
	require.NoError(t, err)
	require.Equal(t, "Refund issued", stored.AdminNotes)
	require.Equal(t, refund, *stored.RefundTransactionID)

	sales, _, total := f.counters(t)
	require.Zero(t, sales)
	require.Zero(t, total)
}

func TestReviewReturnRejectionKeepsSales(t *testing.T) {
	f := newFixture(t)
	order := f.deliveredOrder(t)
	ret, err := f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "Late", AddressID: f.address.ID})
	require.NoError(t, err)

	_, err = f.svc.ReviewReturn(f.ctx, f.admin, ReviewInput{ID: ret.ID, Status: models.ReturnStatusRejected})
	require.NoError(t, err)

	storedOrder, err := f.st.FindOrder(f.ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusDelivered, storedOrder.Status)
	sales, _, total := f.counters(t)
	require.Equal(t, 2, sales)
	require.Equal(t, 1000.0, total)

	_, err = f.svc.UpdateReturn(f.ctx, f.buyer, ReviewInput{ID: ret.ID, Status: models.ReturnStatusCancelled})
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestReturnReads(t *testing.T) {
	f := newFixture(t)
	order := f.deliveredOrder(t)
	ret, err := f.svc.CreateReturn(f.ctx, f.buyer, ReturnRequest{OrderID: order.ID, Reason: "Fit", AddressID: f.address.ID})
	require.NoError(t, err)

	byOrder, err := f.svc.GetReturnByOrder(f.ctx, f.buyer, order.ID)
	require.NoError(t, err)
	require.Equal(t, ret.ID, byOrder.ID)

	_, err = f.svc.GetReturnByOrder(f.ctx, f.buyer, primitive.NewObjectID())
	require.Equal(t, "No return request found for this order", apperr.Message(err))

	_, err = f.svc.GetReturn(f.ctx, auth.Actor{UserID: primitive.NewObjectID()}, ret.ID)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	returns, total, err := f.svc.ListReturns(f.ctx, f.buyer, ListOptions{Status: models.ReturnStatusRequested})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, returns, 1)
}

/* ===== LEDGER ===== */

func TestReconcileRebuildsCountersFromLedger(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID, f.other.ID))
	require.NoError(t, err)

	require.NoError(t, f.st.SetProductSales(f.ctx, f.product.ID, 99))
	require.NoError(t, f.st.SetCreatorSales(f.ctx, f.creator.ID, 1))

	tally, err := f.svc.CreatorSettlement(f.ctx, f.admin, f.creator.ID)
	require.NoError(t, err)
	require.Equal(t, 1.0, tally.Stored)
	require.Equal(t, 1500.0, tally.Ledger)

	_, err = f.svc.ReconcileSettlement(f.ctx, f.buyer, nil)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	tallies, err := f.svc.ReconcileSettlement(f.ctx, f.admin, &f.creator.ID)
	require.NoError(t, err)
	require.Len(t, tallies, 1)

	sales, otherSales, total := f.counters(t)
	require.Equal(t, 2, sales)
	require.Equal(t, 2, otherSales)
	require.Equal(t, 1500.0, total)

	_, err = f.svc.CreatorSettlement(f.ctx, f.admin, primitive.NewObjectID())
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestReverseLegacyOrderUsesCurrentPrices(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.SetProductSales(f.ctx, f.product.ID, 3))
	require.NoError(t, f.st.SetCreatorSales(f.ctx, f.creator.ID, 1500))
	legacy := models.Order{
		UserID:          f.buyer.UserID,
		Status:          models.OrderStatusPending,
		ProductOrdered:  []primitive.ObjectID{f.product.ID},
		SizeOrdered:     []string{"L"},
		QuantityOrdered: []int{3},
	}
	require.NoError(t, f.st.InsertOrder(f.ctx, &legacy))

	require.NoError(t, f.svc.DeleteOrder(f.ctx, f.buyer, legacy.ID))
	sales, _, total := f.counters(t)
	require.Zero(t, sales)
	require.Zero(t, total)
}
