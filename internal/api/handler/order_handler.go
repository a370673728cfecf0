package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type OrderHandler struct {
	orderService       service.IOrderService
	sellerOrderService service.ISellerOrderService
	paymentService     service.IPaymentService
}

func NewOrderHandler(orderService service.IOrderService, sellerOrderService service.ISellerOrderService, paymentService service.IPaymentService) *OrderHandler {
	if orderService == nil || sellerOrderService == nil || paymentService == nil {
		panic("order services cannot be nil")
	}
	return &OrderHandler{
		orderService:       orderService,
		sellerOrderService: sellerOrderService,
		paymentService:     paymentService,
	}
}

// @Summary create order
// @Tags order
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderDTO true "address and items"
// @Success 200 {object} response.Response "Order Placed"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "product or address not found"
// @Failure 409 {object} response.Response "insufficient stock"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/create [post]
func (o *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.CreateOrderDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	order, err := o.orderService.PlaceOrder(r.Context(), userID, service.PlaceOrderInput{
		AddressID: req.Address,
		Items:     req.Items,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessJSON(w, "Order Placed", response.Fields{"orderId": order.ID, "amount": order.Amount})
}

// @Summary list buyer orders
// @Tags order
// @Produce json
// @Success 200 {object} response.Response "orders"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/list [get]
func (o *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	details, err := o.orderService.ListUserOrders(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"orders": dto.ConvertOrderDetails(details)})
}

// @Summary list orders containing seller products
// @Tags order
// @Produce json
// @Success 200 {object} response.Response "orders"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/seller-orders [get]
func (o *OrderHandler) SellerOrders(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	details, err := o.sellerOrderService.ListSellerOrders(r.Context(), sellerID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"orders": dto.ConvertOrderDetails(details)})
}

// @Summary update order status
// @Tags order
// @Accept json
// @Produce json
// @Param update body dto.SellerOrderUpdateDTO true "status, payment status, cancellation reason"
// @Success 200 {object} response.Response "Order updated"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 404 {object} response.Response "order not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/seller-orders [put]
func (o *OrderHandler) UpdateSellerOrder(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.SellerOrderUpdateDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	order, err := o.sellerOrderService.UpdateOrderStatus(r.Context(), sellerID, req.OrderID, model.OrderStatusUpdate{
		Status:             req.Status,
		PaymentStatus:      req.PaymentStatus,
		CancellationReason: req.CancellationReason,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Order updated", response.Fields{"order": order})
}

// @Summary create razorpay order
// @Tags payment
// @Accept json
// @Produce json
// @Param order body dto.RazorpayOrderDTO true "order id"
// @Success 200 {object} response.Response "gateway order"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 404 {object} response.Response "order not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/razorpay [post]
func (o *OrderHandler) CreateRazorpayOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.RazorpayOrderDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	res, err := o.paymentService.CreateGatewayOrder(r.Context(), userID, req.OrderID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{
		"orderId":         res.OrderID,
		"razorpayOrderId": res.GatewayOrderID,
		"amount":          res.Amount,
		"currency":        res.Currency,
		"keyId":           res.KeyID,
	})
}

// @Summary verify razorpay payment signature
// @Tags payment
// @Accept json
// @Produce json
// @Param payment body dto.VerifyPaymentDTO true "gateway ids and signature"
// @Success 200 {object} response.Response "Payment verified"
// @Failure 400 {object} response.Response "Payment verification failed"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 404 {object} response.Response "order not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/verify-payment [post]
func (o *OrderHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.VerifyPaymentDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	order, err := o.paymentService.VerifyPayment(r.Context(), userID, service.VerifyPaymentInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Payment verified", response.Fields{"order": order})
}

// @Summary update payment status
// @Tags payment
// @Accept json
// @Produce json
// @Param payment body dto.UpdatePaymentDTO true "pending or failed"
// @Success 200 {object} response.Response "Payment status updated"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 403 {object} response.Response "not authorized"
// @Failure 404 {object} response.Response "order not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /order/update-payment [post]
func (o *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.UpdatePaymentDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	order, err := o.paymentService.UpdatePaymentStatus(r.Context(), userID, service.UpdatePaymentInput{
		OrderID:          req.OrderID,
		PaymentStatus:    req.PaymentStatus,
		GatewayPaymentID: req.RazorpayPaymentID,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Payment status updated", response.Fields{"order": order})
}
