package mongo_repo

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// decimal 無法直接被 bson 編碼, 以 Decimal128 儲存
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}

func newDocID(current string) string {
	if current != "" {
		return current
	}
	return primitive.NewObjectID().Hex()
}

type productDoc struct {
	ID            string               `bson:"_id"`
	UserID        string               `bson:"userId"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description"`
	Price         primitive.Decimal128 `bson:"price"`
	OfferPrice    primitive.Decimal128 `bson:"offerPrice"`
	Category      string               `bson:"category"`
	Brand         string               `bson:"brand"`
	Subcategory   string               `bson:"subcategory"`
	Images        []string             `bson:"image"`
	Videos        []string             `bson:"videos,omitempty"`
	StockQuantity int                  `bson:"stockQuantity"`
	Date          time.Time            `bson:"date"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func toProductDoc(p *model.Product) productDoc {
	return productDoc{
		ID:            p.ID,
		UserID:        p.UserID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         toDecimal128(p.Price),
		OfferPrice:    toDecimal128(p.OfferPrice),
		Category:      p.Category,
		Brand:         p.Brand,
		Subcategory:   p.Subcategory,
		Images:        p.Images,
		Videos:        p.Videos,
		StockQuantity: p.StockQuantity,
		Date:          p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (d productDoc) toModel() model.Product {
	return model.Product{
		ID:            d.ID,
		UserID:        d.UserID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         fromDecimal128(d.Price),
		OfferPrice:    fromDecimal128(d.OfferPrice),
		Category:      d.Category,
		Brand:         d.Brand,
		Subcategory:   d.Subcategory,
		Images:        d.Images,
		Videos:        d.Videos,
		StockQuantity: d.StockQuantity,
		BaseModel:     model.BaseModel{CreatedAt: d.Date, UpdatedAt: d.UpdatedAt},
	}
}

type orderItemDoc struct {
	Product  string `bson:"product"`
	Quantity int    `bson:"quantity"`
}

type orderDoc struct {
	ID                 string         `bson:"_id"`
	UserID             string         `bson:"userId"`
	Items              []orderItemDoc `bson:"items"`
	Amount             int64          `bson:"amount"`
	Address            string         `bson:"address"`
	Status             string         `bson:"status"`
	PaymentStatus      string         `bson:"paymentStatus"`
	CancellationReason string         `bson:"cancellationReason,omitempty"`
	RazorpayOrderID    string         `bson:"razorpayOrderId,omitempty"`
	RazorpayPaymentID  string         `bson:"razorpayPaymentId,omitempty"`
	Date               time.Time      `bson:"date"`
	UpdatedAt          time.Time      `bson:"updatedAt"`
}

func toOrderDoc(o *model.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemDoc{Product: item.ProductID, Quantity: item.Quantity})
	}
	return orderDoc{
		ID:                 o.ID,
		UserID:             o.UserID,
		Items:              items,
		Amount:             o.Amount,
		Address:            o.AddressID,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		CancellationReason: o.CancellationReason,
		RazorpayOrderID:    o.GatewayOrderID,
		RazorpayPaymentID:  o.GatewayPaymentID,
		Date:               o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func (d orderDoc) toModel() model.Order {
	items := make([]model.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, model.OrderItem{OrderID: d.ID, ProductID: item.Product, Quantity: item.Quantity})
	}
	return model.Order{
		ID:                 d.ID,
		UserID:             d.UserID,
		Items:              items,
		Amount:             d.Amount,
		AddressID:          d.Address,
		Status:             model.OrderStatus(d.Status),
		PaymentStatus:      model.PaymentStatus(d.PaymentStatus),
		CancellationReason: d.CancellationReason,
		GatewayOrderID:     d.RazorpayOrderID,
		GatewayPaymentID:   d.RazorpayPaymentID,
		BaseModel:          model.BaseModel{CreatedAt: d.Date, UpdatedAt: d.UpdatedAt},
	}
}

type userDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	ImageURL  string    `bson:"imageUrl"`
	Date      time.Time `bson:"date"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type addressDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	FullName    string    `bson:"fullName"`
	PhoneNumber string    `bson:"phoneNumber"`
	Pincode     string    `bson:"pincode"`
	Area        string    `bson:"area"`
	City        string    `bson:"city"`
	State       string    `bson:"state"`
	Date        time.Time `bson:"date"`
}

func (d addressDoc) toModel() model.Address {
	return model.Address{
		ID:          d.ID,
		UserID:      d.UserID,
		FullName:    d.FullName,
		PhoneNumber: d.PhoneNumber,
		Pincode:     d.Pincode,
		Area:        d.Area,
		City:        d.City,
		State:       d.State,
		BaseModel:   model.BaseModel{CreatedAt: d.Date},
	}
}
