package jobs

import (
	"time"

	"rental-marketplace-backend/availability/repositories"
	"rental-marketplace-backend/config"
	"rental-marketplace-backend/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunMaintenanceSweep deactivates expired maintenance overrides daily at
// 1 AM so their dates derive as available again.
func RunMaintenanceSweep(availabilityRepo repositories.AvailabilityRepository) {
	c := cron.New()

	_, err := c.AddFunc("0 1 * * *", func() {
		loc := utils.DateLocation
		if loc == nil {
			loc = time.UTC
		}
		now := time.Now().In(loc)

		affected, err := availabilityRepo.DeactivateExpiredMaintenance(now)
		if err != nil {
			config.Logger.Error("Maintenance sweep failed", zap.Error(err))
			return
		}
		if affected > 0 {
			config.Logger.Info("Expired maintenance overrides deactivated",
				zap.Int64("count", affected))
		}
	})
	if err != nil {
		config.Logger.Error("Failed to schedule maintenance sweep", zap.Error(err))
		return
	}

	c.Start()
}
