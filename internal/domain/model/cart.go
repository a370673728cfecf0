package model

// 購物車只存在redis, key為商品ID, value為數量
type Cart struct {
	UserID string         `json:"userId"`
	Items  map[string]int `json:"cartItems"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: map[string]int{}}
}

// IsEmpty 沒有任何數量大於0的商品
func (c *Cart) IsEmpty() bool {
	for _, q := range c.Items {
		if q > 0 {
			return false
		}
	}
	return true
}
