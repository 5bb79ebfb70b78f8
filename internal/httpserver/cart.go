package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karim-ezzedine/MultiCart/internal/domain"
	cartsvc "github.com/Karim-ezzedine/MultiCart/internal/service/cart"
	"github.com/Karim-ezzedine/MultiCart/internal/validation"
)

// CartManager is the slice of the manager the HTTP layer needs.
type CartManager interface {
	SetActiveCart(ctx context.Context, storeID string, profileID *string) (*domain.Cart, error)
	UpdateStatus(ctx context.Context, cartID string, status domain.CartStatus) (*domain.Cart, error)
	UpdateCartDetails(ctx context.Context, cartID string, update cartsvc.DetailsUpdate) (*domain.Cart, error)
	DeleteCart(ctx context.Context, cartID string) error
	AddItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.CartUpdateResult, error)
	UpdateItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.CartUpdateResult, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (*domain.CartUpdateResult, error)
	Reorder(ctx context.Context, sourceCartID string) (*domain.Cart, error)
	DuplicateCart(ctx context.Context, sourceCartID string, overrides *cartsvc.DuplicateOverrides, asTemplate bool) (*domain.Cart, error)
	MigrateGuestActiveCart(ctx context.Context, storeID, toProfileID string, strategy cartsvc.MigrationStrategy) (*domain.Cart, error)
	GetTotals(ctx context.Context, cartID string, pctx *domain.CartPricingContext, promotions []domain.Promotion) (*domain.CartTotals, error)
	GetTotalsForActiveCart(ctx context.Context, pctx domain.CartPricingContext, promotions []domain.Promotion) (*domain.CartTotals, error)
	ValidateBeforeCheckout(ctx context.Context, cartID string) (validation.Verdict, error)
}

type cartHandlers struct {
	manager CartManager
}

func newCartHandlers(manager CartManager) *cartHandlers {
	return &cartHandlers{manager: manager}
}

type scopeRequest struct {
	ProfileID *string `json:"profileId"`
}

func (h *cartHandlers) setActiveCart(c *gin.Context) {
	var req scopeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	cart, err := h.manager.SetActiveCart(c.Request.Context(), c.Param("storeID"), req.ProfileID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type statusRequest struct {
	Status domain.CartStatus `json:"status" binding:"required"`
}

func (h *cartHandlers) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.manager.UpdateStatus(c.Request.Context(), c.Param("cartID"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type detailsRequest struct {
	DisplayName   *string           `json:"displayName"`
	Context       *string           `json:"context"`
	StoreImageURL *string           `json:"storeImageUrl"`
	Metadata      map[string]string `json:"metadata"`
	MinSubtotal   *domain.Money     `json:"minSubtotal"`
	MaxItemCount  *int              `json:"maxItemCount"`
}

func (h *cartHandlers) updateDetails(c *gin.Context) {
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.manager.UpdateCartDetails(c.Request.Context(), c.Param("cartID"), cartsvc.DetailsUpdate{
		DisplayName:   req.DisplayName,
		Context:       req.Context,
		StoreImageURL: req.StoreImageURL,
		Metadata:      req.Metadata,
		MinSubtotal:   req.MinSubtotal,
		MaxItemCount:  req.MaxItemCount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *cartHandlers) deleteCart(c *gin.Context) {
	if err := h.manager.DeleteCart(c.Request.Context(), c.Param("cartID")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *cartHandlers) addItem(c *gin.Context) {
	var item domain.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.manager.AddItem(c.Request.Context(), c.Param("cartID"), item)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *cartHandlers) updateItem(c *gin.Context) {
	var item domain.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, err)
		return
	}
	item.ID = c.Param("itemID")
	result, err := h.manager.UpdateItem(c.Request.Context(), c.Param("cartID"), item)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *cartHandlers) removeItem(c *gin.Context) {
	result, err := h.manager.RemoveItem(c.Request.Context(), c.Param("cartID"), c.Param("itemID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *cartHandlers) reorder(c *gin.Context) {
	cart, err := h.manager.Reorder(c.Request.Context(), c.Param("cartID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

type duplicateRequest struct {
	AsTemplate    bool              `json:"asTemplate"`
	DisplayName   *string           `json:"displayName"`
	Context       *string           `json:"context"`
	Metadata      map[string]string `json:"metadata"`
	StoreImageURL *string           `json:"storeImageUrl"`
	MinSubtotal   *domain.Money     `json:"minSubtotal"`
	MaxItemCount  *int              `json:"maxItemCount"`
}

func (h *cartHandlers) duplicate(c *gin.Context) {
	var req duplicateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	overrides := &cartsvc.DuplicateOverrides{
		DisplayName:   req.DisplayName,
		Context:       req.Context,
		Metadata:      req.Metadata,
		StoreImageURL: req.StoreImageURL,
		MinSubtotal:   req.MinSubtotal,
		MaxItemCount:  req.MaxItemCount,
	}
	cart, err := h.manager.DuplicateCart(c.Request.Context(), c.Param("cartID"), overrides, req.AsTemplate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

type migrateRequest struct {
	ToProfileID string                    `json:"toProfileId" binding:"required"`
	Strategy    cartsvc.MigrationStrategy `json:"strategy" binding:"required"`
}

func (h *cartHandlers) migrateGuestCart(c *gin.Context) {
	var req migrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cart, err := h.manager.MigrateGuestActiveCart(c.Request.Context(), c.Param("storeID"), req.ToProfileID, req.Strategy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type totalsRequest struct {
	Context    *domain.CartPricingContext `json:"context"`
	Promotions []domain.Promotion         `json:"promotions"`
}

func (h *cartHandlers) totals(c *gin.Context) {
	var req totalsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	totals, err := h.manager.GetTotals(c.Request.Context(), c.Param("cartID"), req.Context, req.Promotions)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

type activeTotalsRequest struct {
	ProfileID  *string                    `json:"profileId"`
	Context    *domain.CartPricingContext `json:"context"`
	Promotions []domain.Promotion         `json:"promotions"`
}

func (h *cartHandlers) activeCartTotals(c *gin.Context) {
	var req activeTotalsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	pctx := domain.CartPricingContext{StoreID: c.Param("storeID"), ProfileID: req.ProfileID}
	if req.Context != nil {
		pctx = *req.Context
		pctx.StoreID = c.Param("storeID")
		if pctx.ProfileID == nil {
			pctx.ProfileID = req.ProfileID
		}
	}
	totals, err := h.manager.GetTotalsForActiveCart(c.Request.Context(), pctx, req.Promotions)
	if err != nil {
		writeError(c, err)
		return
	}
	if totals == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *cartHandlers) validate(c *gin.Context) {
	verdict, err := h.manager.ValidateBeforeCheckout(c.Request.Context(), c.Param("cartID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// writeError maps the cart error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStorage):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
