package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type UserHandler struct {
	userService    service.IUserService
	addressService service.IAddressService
}

func NewUserHandler(userService service.IUserService, addressService service.IAddressService) *UserHandler {
	if userService == nil || addressService == nil {
		panic("userService and addressService cannot be nil")
	}
	return &UserHandler{userService: userService, addressService: addressService}
}

// @Summary get current user, created on first call
// @Tags user
// @Produce json
// @Success 200 {object} response.Response{} "user"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /user/data [get]
func (u *UserHandler) Data(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(w, r); !ok {
		return
	}
	user, cart, err := u.userService.GetOrCreateUser(r.Context(), util.GetTokenPayloadFromContext(r.Context()))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"user": dto.ConvertUser(user, cart)})
}

// @Summary add shipping address
// @Tags user
// @Accept json
// @Produce json
// @Param address body dto.AddAddressDTO true "address"
// @Success 200 {object} response.Response "Address added successfully"
// @Failure 400 {object} response.Response "invalid data"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /user/add-address [post]
func (u *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.AddAddressDTO
	if err := decodeJSON(w, r, &req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	address, err := u.addressService.AddAddress(r.Context(), userID, req.Address)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "Address added successfully", response.Fields{"newAddress": address})
}

// @Summary list shipping addresses
// @Tags user
// @Produce json
// @Success 200 {object} response.Response "addresses"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /user/get-address [get]
func (u *UserHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	addresses, err := u.addressService.ListAddresses(r.Context(), userID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	response.SuccessJSON(w, "", response.Fields{"addresses": addresses})
}
