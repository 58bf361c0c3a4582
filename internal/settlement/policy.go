package settlement

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

// Action names a mutation or read that is subject to authorization.
type Action string

const (
	ActionViewOrder         Action = "order:view"
	ActionCancelOrder       Action = "order:cancel"
	ActionUpdateOrderStatus Action = "order:update_status"
	ActionRequestReturn     Action = "return:request"
	ActionViewReturn        Action = "return:view"
	ActionCancelReturn      Action = "return:cancel"
	ActionReviewReturn      Action = "return:review"
	ActionManageCatalog     Action = "catalog:manage"
	ActionEditReview        Action = "review:edit"
	ActionDeleteReview      Action = "review:delete"
	ActionViewTransaction   Action = "transaction:view"
	ActionManageTransaction Action = "transaction:manage"
	ActionManageAddress     Action = "address:manage"
	ActionViewSettlement    Action = "settlement:view"
)

// Resource is the subject of an authorization check.
type Resource struct {
	OwnerID primitive.ObjectID
	Status  string
}

// OrderResource describes an order for Can.
func OrderResource(o models.Order) Resource {
	return Resource{OwnerID: o.UserID, Status: o.Status}
}

// ReturnResource describes a return for Can.
func ReturnResource(r models.Return) Resource {
	return Resource{OwnerID: r.UserID, Status: r.Status}
}

// ReviewResource describes a review for Can.
func ReviewResource(r models.Review) Resource {
	return Resource{OwnerID: r.UserID}
}

// TransactionResource describes a payment transaction for Can.
func TransactionResource(t models.Transaction) Resource {
	return Resource{OwnerID: t.UserID}
}

// Can reports whether actor may perform action on res. It is evaluated before
// every mutation and covers both ownership and the states in which an owner
// may still act.
func Can(actor auth.Actor, action Action, res Resource) bool {
	if actor.UserID.IsZero() {
		return false
	}
	owner := !res.OwnerID.IsZero() && res.OwnerID == actor.UserID

	switch action {
	case ActionViewOrder, ActionViewReturn, ActionViewTransaction, ActionDeleteReview:
		return owner || actor.IsAdmin()
	case ActionCancelOrder:
		return owner && res.Status == models.OrderStatusPending
	case ActionRequestReturn:
		return owner
	case ActionCancelReturn:
		return owner && res.Status == models.ReturnStatusRequested
	case ActionManageAddress, ActionEditReview, ActionManageTransaction:
		return owner
	case ActionUpdateOrderStatus, ActionReviewReturn, ActionManageCatalog, ActionViewSettlement:
		return actor.IsAdmin()
	default:
		return false
	}
}
