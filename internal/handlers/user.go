package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// AddressStore is the persistence needed by the address handlers.
type AddressStore interface {
	store.Transactor
	store.Addresses
}

type addressRequest struct {
	Address models.AddressLines `json:"address" binding:"required"`
	Default bool                `json:"default"`
}

type updateAddressRequest struct {
	ID      string               `json:"id" binding:"required"`
	Address *models.AddressLines `json:"address"`
	Default *bool                `json:"default"`
}

var errAddressForbidden = errors.New("address belongs to another user")

/* =========================
   CREATE ADDRESS
========================= */

func CreateUserAddress(st AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /address"
		defer handlePanic(c, route)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)
		now := nowUTC()
		address := models.Address{
			UserID:    actor.UserID,
			Address:   trimAddressLines(req.Address),
			Default:   req.Default,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err := st.RunInTx(ctx, func(ctx context.Context) error {
			existing, err := st.ListAddresses(ctx, actor.UserID)
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				address.Default = true
			}
			if address.Default {
				if err := st.ClearDefaultAddress(ctx, actor.UserID); err != nil {
					return err
				}
			}
			return st.InsertAddress(ctx, &address)
		})
		if err != nil {
			respondStoreError(c, route, err, "User not found", "Failed to create address")
			return
		}

		logging.FromContext(ctx).Info("address created", zap.String("addressId", address.ID.Hex()), zap.Bool("default", address.Default))
		respondSuccess(c, http.StatusCreated, "Address created successfully", address)
	}
}

/* =========================
   GET ADDRESSES
========================= */

func GetUserAddresses(st AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /address"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)

		if rawID := c.Query("id"); rawID != "" {
			addressID, ok := parseObjectID(rawID)
			if !ok {
				respondWithError(c, http.StatusBadRequest, route, "Invalid address ID")
				return
			}
			address, err := ownedAddress(ctx, st, actor, addressID)
			if errors.Is(err, errAddressForbidden) {
				respondWithError(c, http.StatusForbidden, route, "Unauthorized to access this address")
				return
			}
			if err != nil {
				respondStoreError(c, route, err, "Address not found", "Failed to fetch address")
				return
			}
			respondSuccess(c, http.StatusOK, "", address)
			return
		}

		addresses, err := st.ListAddresses(ctx, actor.UserID)
		if err != nil {
			respondStoreError(c, route, err, "Address not found", "Failed to fetch addresses")
			return
		}
		respondSuccess(c, http.StatusOK, "", addresses)
	}
}

// GetActiveAddress returns the caller's default address.
func GetActiveAddress(st AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /address/active"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		addresses, err := st.ListAddresses(ctx, middleware.ActorFrom(c).UserID)
		if err != nil {
			respondStoreError(c, route, err, "No default address found", "Failed to fetch addresses")
			return
		}
		for _, address := range addresses {
			if address.Default {
				respondSuccess(c, http.StatusOK, "", address)
				return
			}
		}
		respondWithError(c, http.StatusNotFound, route, "No default address found")
	}
}

/* =========================
   UPDATE ADDRESS
========================= */

func UpdateUserAddress(st AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /address"
		defer handlePanic(c, route)

		var req updateAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		addressID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid address ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)
		var updated models.Address
		err := st.RunInTx(ctx, func(ctx context.Context) error {
			address, err := ownedAddress(ctx, st, actor, addressID)
			if err != nil {
				return err
			}
			if req.Address != nil {
				address.Address = trimAddressLines(*req.Address)
			}
			if req.Default != nil && *req.Default && !address.Default {
				if err := st.ClearDefaultAddress(ctx, actor.UserID); err != nil {
					return err
				}
				address.Default = true
			}
			address.UpdatedAt = nowUTC()
			if err := st.ReplaceAddress(ctx, address); err != nil {
				return err
			}
			updated = address
			return nil
		})
		if errors.Is(err, errAddressForbidden) {
			respondWithError(c, http.StatusForbidden, route, "Unauthorized to update this address")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "Address not found", "Failed to update address")
			return
		}

		respondSuccess(c, http.StatusOK, "Address updated successfully", updated)
	}
}

/* =========================
   DELETE ADDRESS
========================= */

func DeleteUserAddress(st AddressStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /address"
		defer handlePanic(c, route)

		addressID, ok := parseObjectID(c.Query("id"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Address ID is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		actor := middleware.ActorFrom(c)
		err := st.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := ownedAddress(ctx, st, actor, addressID); err != nil {
				return err
			}
			return st.DeleteAddress(ctx, addressID)
		})
		if errors.Is(err, errAddressForbidden) {
			respondWithError(c, http.StatusForbidden, route, "Unauthorized to delete this address")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "Address not found", "Failed to delete address")
			return
		}

		respondSuccess(c, http.StatusOK, "Address deleted successfully", gin.H{"_id": addressID.Hex()})
	}
}

func ownedAddress(ctx context.Context, st store.Addresses, actor auth.Actor, addressID primitive.ObjectID) (models.Address, error) {
	address, err := st.FindAddress(ctx, addressID)
	if err != nil {
		return models.Address{}, err
	}
	if !settlement.Can(actor, settlement.ActionManageAddress, settlement.Resource{OwnerID: address.UserID}) {
		return models.Address{}, errAddressForbidden
	}
	return address, nil
}

func trimAddressLines(lines models.AddressLines) models.AddressLines {
	lines.FirstLine = strings.TrimSpace(lines.FirstLine)
	lines.SecondLine = strings.TrimSpace(lines.SecondLine)
	lines.City = strings.TrimSpace(lines.City)
	lines.State = strings.TrimSpace(lines.State)
	return lines
}
