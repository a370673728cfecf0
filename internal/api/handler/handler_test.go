package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/identity"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	mock_service "github.com/RoyceAzure/lab/storefront/internal/service/mock"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func newRequest(method, target string, body io.Reader, userID string) *http.Request {
	r := httptest.NewRequest(method, target, body)
	if userID != "" {
		r = r.WithContext(util.WithTokenPayload(r.Context(), &identity.Payload{UserID: userID}))
	}
	return r
}

func jsonBody(t *testing.T, v any) io.Reader {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestOrderHandlerCreate(t *testing.T) {
	testCases := []struct {
		name       string
		body       io.Reader
		setUpMock  func(orders *mock_service.MockIOrderService)
		expectCode int
		expectMsg  string
	}{
		{
			name: "order placed",
			body: strings.NewReader(`{"address":"addr-1","items":[{"product":"A","quantity":2},{"product":"B","quantity":1}]}`),
			setUpMock: func(orders *mock_service.MockIOrderService) {
				orders.EXPECT().PlaceOrder(gomock.Any(), "buyer-1", service.PlaceOrderInput{
					AddressID: "addr-1",
					Items:     []service.OrderItemInput{{ProductID: "A", Quantity: 2}, {ProductID: "B", Quantity: 1}},
				}).Return(&model.Order{ID: "o1", Amount: 255}, nil)
			},
			expectCode: http.StatusOK,
			expectMsg:  "Order Placed",
		},
		{
			name: "insufficient stock",
			body: strings.NewReader(`{"address":"addr-1","items":[{"product":"B","quantity":2}]}`),
			setUpMock: func(orders *mock_service.MockIOrderService) {
				orders.EXPECT().PlaceOrder(gomock.Any(), "buyer-1", gomock.Any()).
					Return(nil, &service.StockError{ProductID: "B", Name: "Bag", Available: 1, Requested: 2})
			},
			expectCode: http.StatusConflict,
			expectMsg:  "Only 1 left for Bag",
		},
		{
			name:       "malformed body",
			body:       strings.NewReader(`{`),
			setUpMock:  func(*mock_service.MockIOrderService) {},
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			orders := mock_service.NewMockIOrderService(ctrl)
			tc.setUpMock(orders)
			h := NewOrderHandler(orders, mock_service.NewMockISellerOrderService(ctrl), mock_service.NewMockIPaymentService(ctrl))

			w := httptest.NewRecorder()
			h.Create(w, newRequest(http.MethodPost, "/api/order/create", tc.body, "buyer-1"))

			require.Equal(t, tc.expectCode, w.Code)
			body := decodeBody(t, w)
			require.Equal(t, tc.expectCode == http.StatusOK, body["success"])
			if tc.expectMsg != "" {
				require.Equal(t, tc.expectMsg, body["message"])
			}
		})
	}
}

func TestOrderHandlerUpdateSellerOrderForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sellerOrders := mock_service.NewMockISellerOrderService(ctrl)
	shipped := model.OrderStatusShipped
	sellerOrders.EXPECT().UpdateOrderStatus(gomock.Any(), "seller-1", "o1", model.OrderStatusUpdate{Status: &shipped}).
		Return(nil, service.ErrForbidden)
	h := NewOrderHandler(mock_service.NewMockIOrderService(ctrl), sellerOrders, mock_service.NewMockIPaymentService(ctrl))

	w := httptest.NewRecorder()
	h.UpdateSellerOrder(w, newRequest(http.MethodPut, "/api/order/seller-orders", strings.NewReader(`{"orderId":"o1","status":"shipped"}`), "seller-1"))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderHandlerVerifyPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	payments := mock_service.NewMockIPaymentService(ctrl)
	payments.EXPECT().VerifyPayment(gomock.Any(), "buyer-1", service.VerifyPaymentInput{
		OrderID:          "o1",
		GatewayOrderID:   "order_rzp",
		GatewayPaymentID: "pay_1",
		Signature:        "bad",
	}).Return(nil, service.ErrPaymentVerification)
	h := NewOrderHandler(mock_service.NewMockIOrderService(ctrl), mock_service.NewMockISellerOrderService(ctrl), payments)

	w := httptest.NewRecorder()
	h.VerifyPayment(w, newRequest(http.MethodPost, "/api/order/verify-payment", jsonBody(t, map[string]string{
		"orderId":             "o1",
		"razorpay_order_id":   "order_rzp",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "bad",
	}), "buyer-1"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Payment verification failed", decodeBody(t, w)["message"])
}

func TestOrderHandlerListIncludesDeletedProductID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orders := mock_service.NewMockIOrderService(ctrl)
	orders.EXPECT().ListUserOrders(gomock.Any(), "buyer-1").Return([]model.OrderDetail{{
		Order:    model.Order{ID: "o1", AddressID: "addr-1", Items: []model.OrderItem{{ProductID: "gone", Quantity: 1}}},
		Products: map[string]*model.Product{},
	}}, nil)
	h := NewOrderHandler(orders, mock_service.NewMockISellerOrderService(ctrl), mock_service.NewMockIPaymentService(ctrl))

	w := httptest.NewRecorder()
	h.List(w, newRequest(http.MethodGet, "/api/order/list", nil, "buyer-1"))

	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)["orders"].([]any)
	require.Len(t, list, 1)
	order := list[0].(map[string]any)
	require.Equal(t, "addr-1", order["address"])
	require.Equal(t, "gone", order["items"].([]any)[0].(map[string]any)["product"])
}

func TestUnauthenticatedRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewCartHandler(mock_service.NewMockICartService(ctrl))
	w := httptest.NewRecorder()
	h.Get(w, newRequest(http.MethodGet, "/api/cart/get", nil, ""))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartHandlerUpdateItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	carts := mock_service.NewMockICartService(ctrl)
	carts.EXPECT().UpdateItem(gomock.Any(), "buyer-1", "A", -3).
		Return(0, service.ErrInvalidData)
	carts.EXPECT().UpdateItem(gomock.Any(), "buyer-1", "A", 1).Return(2, nil)
	h := NewCartHandler(carts)

	w := httptest.NewRecorder()
	h.UpdateItem(w, newRequest(http.MethodPatch, "/api/cart/item", strings.NewReader(`{"productId":"A","delta":-3}`), "buyer-1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.UpdateItem(w, newRequest(http.MethodPatch, "/api/cart/item", strings.NewReader(`{"productId":"A","delta":1}`), "buyer-1"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(2), decodeBody(t, w)["quantity"])
}

func TestUserHandlerData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_service.NewMockIUserService(ctrl)
	users.EXPECT().GetOrCreateUser(gomock.Any(), &identity.Payload{UserID: "buyer-1"}).
		Return(&model.User{ID: "buyer-1", Name: "User"}, &model.Cart{UserID: "buyer-1", Items: map[string]int{"A": 1}}, nil)
	h := NewUserHandler(users, mock_service.NewMockIAddressService(ctrl))

	w := httptest.NewRecorder()
	h.Data(w, newRequest(http.MethodGet, "/api/user/data", nil, "buyer-1"))

	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	require.Equal(t, "buyer-1", user["_id"])
	require.Equal(t, map[string]any{"A": float64(1)}, user["cartItems"])
}

func multipartBody(t *testing.T, fields map[string][]string, files map[string][]string) (io.Reader, string) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for k, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(k, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("data of " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestProductHandlerAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := mock_service.NewMockIProductService(ctrl)
	products.EXPECT().AddProduct(gomock.Any(), "seller-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, input service.ProductInput) (*model.Product, error) {
			require.Equal(t, "Shoe", input.Name)
			require.Equal(t, "99.5", input.OfferPrice.String())
			require.Equal(t, 7, input.StockQuantity)
			require.Len(t, input.Images, 2)
			require.NotNil(t, input.Video)
			data, err := io.ReadAll(input.Images[0].Reader)
			require.NoError(t, err)
			require.Equal(t, "data of a.png", string(data))
			return &model.Product{ID: "p1", Name: input.Name}, nil
		})
	h := NewProductHandler(products)

	body, contentType := multipartBody(t, map[string][]string{
		"name":          {"Shoe"},
		"price":         {"120"},
		"offerPrice":    {"99.5"},
		"stockQuantity": {"7"},
	}, map[string][]string{
		"images": {"a.png", "b.png"},
		"video":  {"c.mp4"},
	})
	r := newRequest(http.MethodPost, "/api/product/add", body, "seller-1")
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	h.Add(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Upload successful", decodeBody(t, w)["message"])
}

func TestProductHandlerAddInvalidPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewProductHandler(mock_service.NewMockIProductService(ctrl))
	body, contentType := multipartBody(t, map[string][]string{"name": {"Shoe"}, "price": {"abc"}}, nil)
	r := newRequest(http.MethodPost, "/api/product/add", body, "seller-1")
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	h.Add(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandlerUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := mock_service.NewMockIProductService(ctrl)
	products.EXPECT().UpdateProduct(gomock.Any(), "seller-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, input service.ProductUpdateInput) (*model.Product, error) {
			require.Equal(t, "p1", input.ProductID)
			require.Equal(t, []string{"https://cdn/x.png", "https://cdn/y.png"}, input.ImagesToDelete)
			require.True(t, input.DeleteVideo)
			require.Nil(t, input.Name)
			require.Nil(t, input.Price)
			require.Equal(t, 0, *input.StockQuantity)
			return &model.Product{ID: "p1"}, nil
		})
	h := NewProductHandler(products)

	body, contentType := multipartBody(t, map[string][]string{
		"productId":      {"p1"},
		"imagesToDelete": {"https://cdn/x.png", "https://cdn/y.png"},
		"deleteVideo":    {"true"},
		"stockQuantity":  {"0"},
	}, nil)
	r := newRequest(http.MethodPut, "/api/product/seller-list", body, "seller-1")
	r.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	h.Update(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProductHandlerGetNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := mock_service.NewMockIProductService(ctrl)
	products.EXPECT().GetProduct(gomock.Any(), "missing").Return(nil, service.ErrNotFound)

	router := chi.NewRouter()
	router.Get("/api/product/{id}", NewProductHandler(products).Get)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/product/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandlerSellerListTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := mock_service.NewMockIProductService(ctrl)
	products.EXPECT().ListSellerProducts(gomock.Any(), "seller-1", "shoe").
		Return([]model.Product{{ID: "p1"}, {ID: "p2"}}, nil)

	w := httptest.NewRecorder()
	NewProductHandler(products).SellerList(w, newRequest(http.MethodGet, "/api/product/seller-list?search=shoe", nil, "seller-1"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(2), decodeBody(t, w)["total"])
}

func TestProductHandlerDeleteOtherSeller(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	products := mock_service.NewMockIProductService(ctrl)
	products.EXPECT().DeleteProduct(gomock.Any(), "seller-1", "p1").Return(fmt.Errorf("%w: %w", service.ErrNotFound, repository.ErrProductNotFound))

	w := httptest.NewRecorder()
	NewProductHandler(products).Delete(w, newRequest(http.MethodDelete, "/api/product/seller-list?id=p1", nil, "seller-1"))
	require.Equal(t, http.StatusNotFound, w.Code)
}
