package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/transport"
)

// Order is a placed order, retail or wholesale.
type Order struct {
	ID              int64       `json:"id"`
	Status          string      `json:"status"`
	Total           float64     `json:"total"`
	Currency        string      `json:"currency,omitempty"`
	Wholesale       bool        `json:"wholesale"`
	CompanyName     string      `json:"companyName,omitempty"`
	ClientReference string      `json:"clientReference,omitempty"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// WholesaleItem is one requested line of a wholesale order.
type WholesaleItem struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// WholesaleOrderInput is a guest-accessible wholesale order request. It is
// validated client-side before any network call.
type WholesaleOrderInput struct {
	CompanyName string          `json:"companyName" validate:"required"`
	ContactName string          `json:"contactName" validate:"required"`
	Phone       string          `json:"phone" validate:"required,numeric"`
	Email       string          `json:"email,omitempty" validate:"omitempty,email"`
	Notes       string          `json:"notes,omitempty" validate:"max=2000"`
	Items       []WholesaleItem `json:"items" validate:"required,min=1,dive"`

	// ClientReference deduplicates retried submissions; generated when empty.
	ClientReference string `json:"clientReference,omitempty"`
}

// OrderService reads order history over the authenticated transport and
// creates wholesale orders over the public one, so a guest with an expired
// session is never bounced out of the wholesale form.
type OrderService struct {
	api      *transport.Transport
	public   *transport.Transport
	validate *validator.Validate
}

// NewOrderService wraps both transports.
func NewOrderService(authenticated, public *transport.Transport) *OrderService {
	return &OrderService{
		api:      authenticated,
		public:   public,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ListOrders returns the current user's orders.
func (s *OrderService) ListOrders(ctx context.Context) ([]Order, error) {
	var env model.Envelope
	if err := s.api.Get(ctx, "/api/Orders", &env); err != nil {
		return nil, err
	}
	return unwrap[[]Order](env)
}

// GetOrder returns one of the current user's orders.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (Order, error) {
	var env model.Envelope
	if err := s.api.Get(ctx, fmt.Sprintf("/api/Orders/%d", id), &env); err != nil {
		return Order{}, err
	}
	return unwrap[Order](env)
}

// CreateWholesaleOrder validates input and submits it as a guest-accessible
// wholesale order. Validation failures never reach the network.
func (s *OrderService) CreateWholesaleOrder(ctx context.Context, input WholesaleOrderInput) (Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return Order{}, fmt.Errorf("invalid wholesale order: %w", err)
	}
	if input.ClientReference == "" {
		input.ClientReference = uuid.NewString()
	}

	var env model.Envelope
	if err := s.public.Post(ctx, "/api/WholesaleOrders", input, &env); err != nil {
		return Order{}, err
	}
	return unwrap[Order](env)
}
