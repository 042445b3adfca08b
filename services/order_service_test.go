package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zaidzaid0342-dotcom/restaurant/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Order{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return NewOrderService(db, nil), db
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }

func dineInInput() PlaceOrderInput {
	return PlaceOrderInput{
		OrderType:      models.OrderTypeDineIn,
		TableNumber:    "5",
		WhatsappNumber: "9998887776",
		Items: []models.OrderItem{
			{Name: "Chicken Biryani", Price: 250, Qty: 2},
			{Name: "Butter Naan", Price: 40, Qty: 3},
		},
		Total: floatPtr(620),
	}
}

func deliveryInput() PlaceOrderInput {
	return PlaceOrderInput{
		OrderType:       models.OrderTypeHomeDelivery,
		WhatsappNumber:  "9998887776",
		CustomerName:    "Asha",
		CustomerPhone:   "9998887776",
		DeliveryAddress: "12 MG Road",
		Items: []models.OrderItem{
			{Name: "Paneer Tikka", Price: 180, Qty: 1},
		},
		Total: floatPtr(180),
	}
}

func TestPlaceValidation(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	tests := []struct {
		name            string
		mutate          func(input *PlaceOrderInput)
		expectedMessage string
	}{
		{
			name:            "Missing order type",
			mutate:          func(in *PlaceOrderInput) { in.OrderType = "" },
			expectedMessage: "Order type is required",
		},
		{
			name:            "Unknown order type",
			mutate:          func(in *PlaceOrderInput) { in.OrderType = "takeaway" },
			expectedMessage: "Invalid order type: takeaway",
		},
		{
			name:            "No items",
			mutate:          func(in *PlaceOrderInput) { in.Items = nil },
			expectedMessage: "Order items are required",
		},
		{
			name:            "Missing total",
			mutate:          func(in *PlaceOrderInput) { in.Total = nil },
			expectedMessage: "Total amount is required",
		},
		{
			name:            "Missing WhatsApp number",
			mutate:          func(in *PlaceOrderInput) { in.WhatsappNumber = "" },
			expectedMessage: "WhatsApp number is required",
		},
		{
			name:            "Dine-in without table number",
			mutate:          func(in *PlaceOrderInput) { in.TableNumber = "" },
			expectedMessage: "Table number is required for dine-in orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := dineInInput()
			tt.mutate(&input)

			order, err := svc.Place(input)
			assert.Nil(t, order)
			assert.Error(t, err)

			orderErr, ok := err.(*OrderError)
			assert.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", orderErr.Code)
			assert.Equal(t, tt.expectedMessage, orderErr.Message)
		})
	}
}

func TestPlaceHomeDeliveryValidation(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	tests := []struct {
		name   string
		mutate func(input *PlaceOrderInput)
	}{
		{"Missing name", func(in *PlaceOrderInput) { in.CustomerName = "" }},
		{"Missing phone", func(in *PlaceOrderInput) { in.CustomerPhone = "" }},
		{"Missing address", func(in *PlaceOrderInput) { in.DeliveryAddress = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := deliveryInput()
			tt.mutate(&input)

			order, err := svc.Place(input)
			assert.Nil(t, order)

			orderErr, ok := err.(*OrderError)
			assert.True(t, ok)
			assert.Equal(t, "Name, phone, and address are required for home delivery orders", orderErr.Message)
		})
	}
}

func TestPlaceDineInOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	order, err := svc.Place(dineInInput())
	assert.NoError(t, err)
	assert.NotNil(t, order)

	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), order.TrackingID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, order.Paid)
	assert.Equal(t, models.OrderTypeDineIn, order.OrderType)
	assert.NotNil(t, order.TableNumber)
	assert.Equal(t, "5", *order.TableNumber)
	assert.InDelta(t, 620, order.Total, 0.001)
	assert.Len(t, order.Items, 2)

	// Delivery-only fields stay empty on a dine-in order
	assert.Nil(t, order.CustomerName)
	assert.Nil(t, order.CustomerPhone)
	assert.Nil(t, order.DeliveryAddress)

	var stored models.Order
	assert.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, order.TrackingID, stored.TrackingID)
}

func TestPlaceHomeDeliveryOrder(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	order, err := svc.Place(deliveryInput())
	assert.NoError(t, err)
	assert.NotNil(t, order)

	assert.Equal(t, models.OrderTypeHomeDelivery, order.OrderType)
	assert.NotNil(t, order.CustomerName)
	assert.Equal(t, "Asha", *order.CustomerName)
	assert.NotNil(t, order.CustomerPhone)
	assert.NotNil(t, order.DeliveryAddress)
	assert.Equal(t, "12 MG Road", *order.DeliveryAddress)

	// Table number stays empty on a delivery order
	assert.Nil(t, order.TableNumber)
}

func TestPlaceDropsOffTypeFields(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	// A dine-in payload that also carries delivery fields
	input := dineInInput()
	input.CustomerName = "Asha"
	input.CustomerPhone = "9998887776"
	input.DeliveryAddress = "12 MG Road"

	order, err := svc.Place(input)
	assert.NoError(t, err)
	assert.Nil(t, order.CustomerName)
	assert.Nil(t, order.CustomerPhone)
	assert.Nil(t, order.DeliveryAddress)
	assert.NotNil(t, order.TableNumber)
}

func TestPlaceKeepsSubmittedTotal(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	// The client's total wins even when it disagrees with the items
	input := dineInInput()
	input.Total = floatPtr(999)

	order, err := svc.Place(input)
	assert.NoError(t, err)
	assert.InDelta(t, 999, order.Total, 0.001)
}

func TestPlacePublishesNewOrderEvent(t *testing.T) {
	_, db := setupOrderServiceTest(t)
	b := NewBroadcaster()
	svc := NewOrderService(db, b)

	events, cancel := b.Subscribe()
	defer cancel()

	order, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	event := receiveEvent(t, events)
	assert.Equal(t, EventNewOrder, event.Name)
	assert.Equal(t, order.TrackingID, event.Order.TrackingID)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	tests := []struct {
		name           string
		input          StatusUpdateInput
		expectedStatus string
		expectedPaid   bool
	}{
		{
			name:           "Status only",
			input:          StatusUpdateInput{Status: strPtr(models.StatusPreparing)},
			expectedStatus: models.StatusPreparing,
			expectedPaid:   false,
		},
		{
			name:           "Paid only leaves status alone",
			input:          StatusUpdateInput{Paid: boolPtr(true)},
			expectedStatus: models.StatusPending,
			expectedPaid:   true,
		},
		{
			name:           "Status and paid together",
			input:          StatusUpdateInput{Status: strPtr(models.StatusServed), Paid: boolPtr(true)},
			expectedStatus: models.StatusServed,
			expectedPaid:   true,
		},
		{
			name:           "Empty update changes nothing",
			input:          StatusUpdateInput{},
			expectedStatus: models.StatusPending,
			expectedPaid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			placed, err := svc.Place(dineInInput())
			assert.NoError(t, err)

			updated, err := svc.UpdateStatus(placed.ID, tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, updated.Status)
			assert.Equal(t, tt.expectedPaid, updated.Paid)
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	placed, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	updated, err := svc.UpdateStatus(placed.ID, StatusUpdateInput{Status: strPtr("cooked")})
	assert.Nil(t, updated)

	orderErr, ok := err.(*OrderError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", orderErr.Code)
	assert.Equal(t, "Invalid status: cooked", orderErr.Message)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	placed, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	// No transition ordering: delivered can be followed by pending
	_, err = svc.UpdateStatus(placed.ID, StatusUpdateInput{Status: strPtr(models.StatusDelivered)})
	assert.NoError(t, err)

	reverted, err := svc.UpdateStatus(placed.ID, StatusUpdateInput{Status: strPtr(models.StatusPending)})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, reverted.Status)
}

func TestUpdateStatusOrderNotFound(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	updated, err := svc.UpdateStatus(9999, StatusUpdateInput{Status: strPtr(models.StatusReady)})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatusPublishesOrderUpdatedEvent(t *testing.T) {
	_, db := setupOrderServiceTest(t)
	b := NewBroadcaster()
	svc := NewOrderService(db, b)

	placed, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	events, cancel := b.Subscribe()
	defer cancel()

	_, err = svc.UpdateStatus(placed.ID, StatusUpdateInput{Status: strPtr(models.StatusReady)})
	assert.NoError(t, err)

	event := receiveEvent(t, events)
	assert.Equal(t, EventOrderUpdated, event.Name)
	assert.Equal(t, placed.TrackingID, event.Order.TrackingID)
	assert.Equal(t, models.StatusReady, event.Order.Status)
}

func TestGetByID(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	placed, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	found, err := svc.GetByID(placed.ID)
	assert.NoError(t, err)
	assert.Equal(t, placed.TrackingID, found.TrackingID)

	missing, err := svc.GetByID(9999)
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetByTrackingID(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)

	placed, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	found, err := svc.GetByTrackingID(placed.TrackingID)
	assert.NoError(t, err)
	assert.Equal(t, placed.ID, found.ID)

	missing, err := svc.GetByTrackingID("0000")
	assert.Nil(t, missing)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetByWhatsappNumber(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	older, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	newer, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	// Stagger timestamps so ordering is deterministic
	assert.NoError(t, db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	t.Run("Exact digits return the newest order", func(t *testing.T) {
		found, err := svc.GetByWhatsappNumber("9998887776")
		assert.NoError(t, err)
		assert.Equal(t, newer.ID, found.ID)
	})

	t.Run("Formatting in the query is stripped", func(t *testing.T) {
		found, err := svc.GetByWhatsappNumber("+91 (999) 888-7776")
		assert.NoError(t, err)
		assert.Equal(t, newer.ID, found.ID)
	})

	t.Run("Partial digits match as a substring", func(t *testing.T) {
		found, err := svc.GetByWhatsappNumber("8887776")
		assert.NoError(t, err)
		assert.Equal(t, newer.ID, found.ID)
	})

	t.Run("Unknown number returns not found", func(t *testing.T) {
		found, err := svc.GetByWhatsappNumber("1112223334")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Query without digits returns not found", func(t *testing.T) {
		found, err := svc.GetByWhatsappNumber("not-a-number")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestListAllNewestFirst(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	first, err := svc.Place(dineInInput())
	assert.NoError(t, err)
	second, err := svc.Place(deliveryInput())
	assert.NoError(t, err)
	third, err := svc.Place(dineInInput())
	assert.NoError(t, err)

	now := time.Now()
	assert.NoError(t, db.Model(first).Update("created_at", now.Add(-2*time.Hour)).Error)
	assert.NoError(t, db.Model(second).Update("created_at", now.Add(-time.Hour)).Error)
	assert.NoError(t, db.Model(third).Update("created_at", now).Error)

	orders, err := svc.ListAll()
	assert.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.Equal(t, third.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
	assert.Equal(t, first.ID, orders[2].ID)
}
