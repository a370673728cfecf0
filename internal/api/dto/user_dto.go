package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type UserDTO struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	ImageURL  string         `json:"imageUrl"`
	CartItems map[string]int `json:"cartItems"`
}

func ConvertUser(user *model.User, cart *model.Cart) UserDTO {
	items := map[string]int{}
	if cart != nil && cart.Items != nil {
		items = cart.Items
	}
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		ImageURL:  user.ImageURL,
		CartItems: items,
	}
}

type AddAddressDTO struct {
	Address service.AddressInput `json:"address"`
}

type CartUpdateDTO struct {
	CartData map[string]int `json:"cartData"`
}

type CartItemDTO struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
}
