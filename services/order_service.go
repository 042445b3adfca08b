package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"

	"github.com/zaidzaid0342-dotcom/restaurant/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderError represents an order validation failure
type OrderError struct {
	Code    string
	Message string
}

func (e *OrderError) Error() string {
	return e.Message
}

// ErrOrderNotFound is returned when no order matches a lookup
var ErrOrderNotFound = errors.New("order not found")

// PlaceOrderInput is the payload for placing an order. Which fields are
// required depends on the order type: dine-in needs a table number,
// home-delivery needs name, phone and address.
type PlaceOrderInput struct {
	OrderType       string
	TableNumber     string
	WhatsappNumber  string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	Items           []models.OrderItem
	Total           *float64
}

// StatusUpdateInput is the partial payload for updating an order.
// Nil fields are left untouched.
type StatusUpdateInput struct {
	Status *string
	Paid   *bool
}

// OrderService implements the order lifecycle: placement, status and
// payment updates, and the customer/admin lookups
type OrderService struct {
	db          *gorm.DB
	broadcaster *Broadcaster
}

// NewOrderService creates an order service bound to a database handle
// and an event broadcaster
func NewOrderService(db *gorm.DB, broadcaster *Broadcaster) *OrderService {
	return &OrderService{db: db, broadcaster: broadcaster}
}

// Place validates the input for its order type, mints a tracking ID and
// persists the order with status=pending, paid=false. A newOrder event
// is published on success.
func (s *OrderService) Place(input PlaceOrderInput) (*models.Order, error) {
	if input.OrderType == "" {
		return nil, &OrderError{Code: "VALIDATION_ERROR", Message: "Order type is required"}
	}
	if !models.IsValidOrderType(input.OrderType) {
		return nil, &OrderError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("Invalid order type: %s", input.OrderType)}
	}
	if len(input.Items) == 0 {
		return nil, &OrderError{Code: "VALIDATION_ERROR", Message: "Order items are required"}
	}
	if input.Total == nil {
		return nil, &OrderError{Code: "VALIDATION_ERROR", Message: "Total amount is required"}
	}
	if input.WhatsappNumber == "" {
		return nil, &OrderError{Code: "VALIDATION_ERROR", Message: "WhatsApp number is required"}
	}

	if input.OrderType == models.OrderTypeDineIn && input.TableNumber == "" {
		return nil, &OrderError{Code: "VALIDATION_ERROR", Message: "Table number is required for dine-in orders"}
	}
	if input.OrderType == models.OrderTypeHomeDelivery {
		if input.CustomerName == "" || input.CustomerPhone == "" || input.DeliveryAddress == "" {
			return nil, &OrderError{Code: "VALIDATION_ERROR", Message: "Name, phone, and address are required for home delivery orders"}
		}
	}

	trackingID, err := GenerateTrackingID(s.db)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		TrackingID:     trackingID,
		OrderType:      input.OrderType,
		WhatsappNumber: input.WhatsappNumber,
		Items:          datatypes.NewJSONSlice(input.Items),
		Total:          *input.Total,
		Status:         models.StatusPending,
		Paid:           false,
	}

	// Fields outside the order type are dropped so exactly one of the
	// dine-in/home-delivery field sets is populated
	switch input.OrderType {
	case models.OrderTypeDineIn:
		order.TableNumber = &input.TableNumber
	case models.OrderTypeHomeDelivery:
		order.CustomerName = &input.CustomerName
		order.CustomerPhone = &input.CustomerPhone
		order.DeliveryAddress = &input.DeliveryAddress
	}

	// The client-submitted total is stored as given; a disagreement with
	// the item snapshots is flagged in the log, not rejected
	if computed := order.ItemsTotal(); math.Abs(computed-order.Total) > 0.009 {
		log.Printf("Order %s: submitted total %.2f does not match item total %.2f", trackingID, order.Total, computed)
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(Event{Name: EventNewOrder, Order: order})
	}

	return &order, nil
}

// UpdateStatus applies a partial status and/or payment update. Unknown
// status values are rejected; transition ordering is not enforced, any
// known status can follow any other. Paid is set independently of
// status. An orderUpdated event is published on success.
func (s *OrderService) UpdateStatus(id uint, input StatusUpdateInput) (*models.Order, error) {
	updates := make(map[string]interface{})
	if input.Status != nil {
		if !models.IsValidStatus(*input.Status) {
			return nil, &OrderError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("Invalid status: %s", *input.Status)}
		}
		updates["status"] = *input.Status
	}
	if input.Paid != nil {
		updates["paid"] = *input.Paid
	}

	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&order).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(Event{Name: EventOrderUpdated, Order: order})
	}

	return &order, nil
}

// GetByID fetches an order by its internal id
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// GetByTrackingID fetches an order by its public 4-digit tracking code.
// The tracking code itself is the capability; no authentication is
// layered on top of this lookup.
func (s *OrderService) GetByTrackingID(trackingID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("tracking_id = ?", trackingID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

var nonDigits = regexp.MustCompile(`\D`)

// GetByWhatsappNumber returns the most recent order whose WhatsApp
// number contains the digits of the queried number. Stored numbers are
// not normalized at write time, so this is a deliberately loose partial
// match: a shorter stored number that is a substring of the query (or
// vice versa) can match.
func (s *OrderService) GetByWhatsappNumber(number string) (*models.Order, error) {
	clean := nonDigits.ReplaceAllString(number, "")
	if clean == "" {
		return nil, ErrOrderNotFound
	}

	var order models.Order
	err := s.db.Where("whatsapp_number LIKE ?", "%"+clean+"%").
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// ListAll returns every order, newest first, for the admin dashboard
func (s *OrderService) ListAll() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
