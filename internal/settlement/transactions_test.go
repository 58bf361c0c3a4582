package settlement

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

var testRefs = GatewayRefs{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig_1"}

func TestRecordTransactionUsesOrderPaymentReference(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	tx, err := f.svc.RecordTransaction(f.ctx, f.buyer, order.ID, testRefs)
	require.NoError(t, err)
	require.Equal(t, order.TransactionID, tx.ID)
	require.Equal(t, f.buyer.UserID, tx.UserID)
	require.Equal(t, "pay_1", tx.RazorpayPaymentID)

	_, err = f.svc.RecordTransaction(f.ctx, f.buyer, order.ID, testRefs)
	require.True(t, apperr.Is(err, apperr.Conflict))

	byOrder, err := f.svc.GetTransactionByOrder(f.ctx, f.admin, order.ID)
	require.NoError(t, err)
	require.Equal(t, tx.ID, byOrder.ID)

	_, err = f.svc.GetTransactionByOrder(f.ctx, f.buyer, primitive.NewObjectID())
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Equal(t, "Transaction not found for this order", apperr.Message(err))
}

func TestRecordTransactionGuards(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)

	_, err = f.svc.RecordTransaction(f.ctx, f.admin, order.ID, testRefs)
	require.True(t, apperr.Is(err, apperr.Forbidden))

	_, err = f.svc.RecordTransaction(f.ctx, f.buyer, order.ID, GatewayRefs{PaymentID: "pay_1", OrderID: " "})
	require.True(t, apperr.Is(err, apperr.ValidationFailed))

	_, err = f.svc.RecordTransaction(f.ctx, f.buyer, primitive.NewObjectID(), testRefs)
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestTransactionOwnerUpdatesAndDeletes(t *testing.T) {
	f := newFixture(t)
	stranger := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
	require.NoError(t, err)
	tx, err := f.svc.RecordTransaction(f.ctx, f.buyer, order.ID, testRefs)
	require.NoError(t, err)

	_, err = f.svc.GetTransaction(f.ctx, stranger, tx.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Equal(t, "Unauthorized to access this transaction", apperr.Message(err))

	_, err = f.svc.UpdateTransaction(f.ctx, stranger, tx.ID, GatewayRefs{Signature: "forged"})
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Equal(t, "Unauthorized to update this transaction", apperr.Message(err))

	updated, err := f.svc.UpdateTransaction(f.ctx, f.buyer, tx.ID, GatewayRefs{Signature: "sig_2"})
	require.NoError(t, err)
	require.Equal(t, "sig_2", updated.RazorpaySignature)
	require.Equal(t, "pay_1", updated.RazorpayPaymentID)

	err = f.svc.DeleteTransaction(f.ctx, stranger, tx.ID)
	require.True(t, apperr.Is(err, apperr.Forbidden))
	require.Equal(t, "Unauthorized to delete this transaction", apperr.Message(err))

	require.NoError(t, f.st.SetOrderStatus(f.ctx, order.ID, models.OrderStatusProcessing, testNow))
	err = f.svc.DeleteTransaction(f.ctx, f.buyer, tx.ID)
	require.True(t, apperr.Is(err, apperr.ValidationFailed))
	require.Equal(t, "Cannot delete transaction for non-pending orders", apperr.Message(err))

	require.NoError(t, f.st.SetOrderStatus(f.ctx, order.ID, models.OrderStatusPending, testNow))
	require.NoError(t, f.svc.DeleteTransaction(f.ctx, f.buyer, tx.ID))
	_, err = f.svc.GetTransaction(f.ctx, f.buyer, tx.ID)
	require.True(t, apperr.Is(err, apperr.NotFound))
	require.Equal(t, "Transaction not found", apperr.Message(err))
}

func TestListTransactions(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 2; i++ {
		order, err := f.svc.CreateOrder(f.ctx, f.buyer, f.request(f.product.ID))
		require.NoError(t, err)
		_, err = f.svc.RecordTransaction(f.ctx, f.buyer, order.ID, testRefs)
		require.NoError(t, err)
	}

	txs, total, err := f.svc.ListTransactions(f.ctx, f.buyer, ListOptions{Page: store.Page{Page: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.EqualValues(t, 2, total)

	_, _, err = f.svc.ListTransactions(f.ctx, f.buyer, ListOptions{All: true})
	require.True(t, apperr.Is(err, apperr.Forbidden))

	_, total, err = f.svc.ListTransactions(f.ctx, f.admin, ListOptions{All: true})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	_, total, err = f.svc.ListTransactions(f.ctx, f.admin, ListOptions{})
	require.NoError(t, err)
	require.Zero(t, total)
}
