package settlement

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
)

func TestCan(t *testing.T) {
	owner := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	stranger := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleUser}
	admin := auth.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}

	pending := Resource{OwnerID: owner.UserID, Status: models.OrderStatusPending}
	shipped := Resource{OwnerID: owner.UserID, Status: models.OrderStatusShipped}
	requested := Resource{OwnerID: owner.UserID, Status: models.ReturnStatusRequested}
	approved := Resource{OwnerID: owner.UserID, Status: models.ReturnStatusApproved}

	cases := []struct {
		name   string
		actor  auth.Actor
		action Action
		res    Resource
		want   bool
	}{
		{"owner views order", owner, ActionViewOrder, shipped, true},
		{"admin views order", admin, ActionViewOrder, shipped, true},
		{"stranger views order", stranger, ActionViewOrder, shipped, false},
		{"owner cancels pending order", owner, ActionCancelOrder, pending, true},
		{"owner cancels shipped order", owner, ActionCancelOrder, shipped, false},
		{"admin cancels someone's pending order", admin, ActionCancelOrder, pending, false},
		{"owner requests return", owner, ActionRequestReturn, shipped, true},
		{"stranger requests return", stranger, ActionRequestReturn, shipped, false},
		{"owner cancels requested return", owner, ActionCancelReturn, requested, true},
		{"owner cancels approved return", owner, ActionCancelReturn, approved, false},
		{"owner reviews own return", owner, ActionReviewReturn, requested, false},
		{"admin reviews return", admin, ActionReviewReturn, requested, true},
		{"user changes order status", owner, ActionUpdateOrderStatus, pending, false},
		{"admin changes order status", admin, ActionUpdateOrderStatus, pending, true},
		{"user manages catalogue", owner, ActionManageCatalog, Resource{}, false},
		{"admin manages catalogue", admin, ActionManageCatalog, Resource{}, true},
		{"owner edits review", owner, ActionEditReview, Resource{OwnerID: owner.UserID}, true},
		{"admin edits someone's review", admin, ActionEditReview, Resource{OwnerID: owner.UserID}, false},
		{"admin deletes someone's review", admin, ActionDeleteReview, Resource{OwnerID: owner.UserID}, true},
		{"stranger deletes review", stranger, ActionDeleteReview, Resource{OwnerID: owner.UserID}, false},
		{"admin views transaction", admin, ActionViewTransaction, Resource{OwnerID: owner.UserID}, true},
		{"stranger views transaction", stranger, ActionViewTransaction, Resource{OwnerID: owner.UserID}, false},
		{"admin updates someone's transaction", admin, ActionManageTransaction, Resource{OwnerID: owner.UserID}, false},
		{"anonymous", auth.Actor{}, ActionViewOrder, Resource{}, false},
		{"unknown action", admin, Action("nope"), pending, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Can(tc.actor, tc.action, tc.res))
		})
	}
}
