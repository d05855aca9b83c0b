package order

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MarcGrol/cafeshop/services/catalogapi"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

var (
	ErrUnauthorized    = errors.New("no valid session")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("invalid cart line")
	ErrMixedCurrencies = errors.New("cart contains products with different currencies")
)

type ProductNotFoundError struct {
	ProductUID string
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with uid %s not found", e.ProductUID)
}

// Order embeds its lines, so header and lines are always written together.
// TotalPrice equals the sum of quantity times price over all lines.
type Order struct {
	UID        string
	UserUID    string
	UserEmail  string
	TotalPrice int64
	Currency   string
	Status     Status
	CreatedAt  time.Time
	Lines      []OrderLine
}

// OrderLine prices are taken from the catalog when the order is created.
type OrderLine struct {
	ProductUID  string
	ProductName string
	Quantity    int
	Price       int64
}

// subTotal reports false when quantity times price does not fit in an int64.
func (l OrderLine) subTotal() (int64, bool) {
	if l.Quantity < 0 || l.Price < 0 {
		return 0, false
	}
	if l.Price != 0 && int64(l.Quantity) > math.MaxInt64/l.Price {
		return 0, false
	}
	return int64(l.Quantity) * l.Price, true
}

type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	ProductUID string `json:"id"`
	Quantity   int    `json:"quantity"`
}

type OrderResponse struct {
	UID        string              `json:"id"`
	UserUID    string              `json:"userId"`
	TotalPrice string              `json:"totalPrice"`
	Currency   string              `json:"currency"`
	Status     Status              `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
	Items      []OrderLineResponse `json:"items"`
}

type OrderLineResponse struct {
	ProductUID  string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

func orderToResponse(o Order) OrderResponse {
	resp := OrderResponse{
		UID:        o.UID,
		UserUID:    o.UserUID,
		TotalPrice: catalogapi.FormatPrice(o.TotalPrice),
		Currency:   o.Currency,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
		Items:      make([]OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		resp.Items = append(resp.Items, OrderLineResponse{
			ProductUID:  l.ProductUID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       catalogapi.FormatPrice(l.Price),
		})
	}
	return resp
}
