package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// @Summary get cart
// @Tags cart
// @Produce json
// @Success 200 {object} response.Response "cartItems"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /cart/get [get]
func (c *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	cart, err := c.cartService.GetCart(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"cartItems": cart.Items})
}

// @Summary replace cart
// @Tags cart
// @Accept json
// @Produce json
// @Param cart body dto.CartUpdateDTO true "product id to quantity"
// @Success 200 {object} response.Response "Cart Updated"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /cart/update [post]
func (c *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.CartUpdateDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	cart, err := c.cartService.ReplaceCart(r.Context(), userID, req.CartData)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Cart Updated", response.Fields{"cartItems": cart.Items})
}

// @Summary change quantity of one cart item
// @Tags cart
// @Accept json
// @Produce json
// @Param item body dto.CartItemDTO true "product id and delta"
// @Success 200 {object} response.Response "quantity"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "product not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /cart/item [patch]
func (c *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.CartItemDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	quantity, err := c.cartService.UpdateItem(r.Context(), userID, req.ProductID, req.Delta)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Cart Updated", response.Fields{"productId": req.ProductID, "quantity": quantity})
}
