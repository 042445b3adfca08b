package services

import (
	"fmt"
	"math/rand/v2"

	"github.com/zaidzaid0342-dotcom/restaurant/models"
	"gorm.io/gorm"
)

// Tracking IDs are 4-digit codes customers quote to check their order
const (
	trackingIDMin  = 1000
	trackingIDSpan = 9000
)

// GenerateTrackingID mints a 4-digit tracking ID not used by any
// existing order. It draws uniformly from 1000-9999 and retries on
// collision. Two concurrent calls can race past the existence check;
// the unique index on tracking_id makes the losing insert fail instead
// of silently duplicating.
func GenerateTrackingID(db *gorm.DB) (string, error) {
	for {
		candidate := fmt.Sprintf("%d", trackingIDMin+rand.IntN(trackingIDSpan))

		// Unscoped so soft-deleted orders keep their IDs reserved
		var count int64
		if err := db.Unscoped().Model(&models.Order{}).
			Where("tracking_id = ?", candidate).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check tracking id: %w", err)
		}

		if count == 0 {
			return candidate, nil
		}
	}
}
