package controllers

import (
	"io"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zaidzaid0342-dotcom/restaurant/services"
)

// StreamOrderEvents handles GET /api/orders/events - pushes newOrder and
// orderUpdated events to the client over server-sent events. Every
// connected client receives every event; there is no replay for events
// fired before the connection opened, clients catch up by re-fetching.
func StreamOrderEvents(c *gin.Context) {
	events, cancel := services.GetBroadcaster().Subscribe()
	defer cancel()

	log.Printf("Client connected to order event stream")

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.Name, event.Order)
			return true
		case <-c.Request.Context().Done():
			log.Printf("Client disconnected from order event stream")
			return false
		}
	})
}
