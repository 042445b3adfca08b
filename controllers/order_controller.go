package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zaidzaid0342-dotcom/restaurant/config"
	"github.com/zaidzaid0342-dotcom/restaurant/models"
	"github.com/zaidzaid0342-dotcom/restaurant/services"
)

// PlaceOrderRequest represents the public checkout payload. Field
// validation is conditional on orderType and lives in the order
// service so its messages stay specific.
type PlaceOrderRequest struct {
	OrderType       string             `json:"orderType"`
	TableNumber     string             `json:"tableNumber"`
	WhatsappNumber  string             `json:"whatsappNumber"`
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Items           []models.OrderItem `json:"items"`
	Total           *float64           `json:"total"`
}

// UpdateOrderStatusRequest represents the partial status/payment update
type UpdateOrderStatusRequest struct {
	Status *string `json:"status"`
	Paid   *bool   `json:"paid"`
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), services.GetBroadcaster())
}

// PlaceOrder handles POST /api/orders - places a new order (no auth needed)
func PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := orderService().Place(services.PlaceOrderInput{
		OrderType:       req.OrderType,
		TableNumber:     req.TableNumber,
		WhatsappNumber:  req.WhatsappNumber,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Items:           req.Items,
		Total:           req.Total,
	})
	if err != nil {
		var orderErr *services.OrderError
		if errors.As(err, &orderErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    orderErr.Code,
					"message": orderErr.Message,
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to place order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/orders - lists all orders, newest first (admin only)
func ListOrders(c *gin.Context) {
	orders, err := orderService().ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/orders/:id - fetches a single order by internal id
func GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID must be numeric",
			},
		})
		return
	}

	order, lookupErr := orderService().GetByID(uint(id))
	if lookupErr != nil {
		respondOrderLookupError(c, lookupErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// TrackOrder handles GET /api/orders/track/:trackingId - customer-facing
// lookup by the 4-digit tracking code, no authentication required
func TrackOrder(c *gin.Context) {
	order, err := orderService().GetByTrackingID(c.Param("trackingId"))
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrderByWhatsappNumber handles GET /api/orders/whatsapp/:number -
// returns the most recent order matching the number's digits
func GetOrderByWhatsappNumber(c *gin.Context) {
	order, err := orderService().GetByWhatsappNumber(c.Param("number"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "No orders found for this WhatsApp number",
				},
			})
			return
		}
		respondOrderLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrderStatus handles PUT /api/orders/:id/status - updates status
// and/or payment flag (admin only)
func UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID must be numeric",
			},
		})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, updateErr := orderService().UpdateStatus(uint(id), services.StatusUpdateInput{
		Status: req.Status,
		Paid:   req.Paid,
	})
	if updateErr != nil {
		var orderErr *services.OrderError
		if errors.As(updateErr, &orderErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    orderErr.Code,
					"message": orderErr.Message,
				},
			})
			return
		}
		respondOrderLookupError(c, updateErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// respondOrderLookupError maps service lookup errors to HTTP responses
func respondOrderLookupError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Failed to fetch order",
		},
	})
}
