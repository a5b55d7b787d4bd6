package controllers

import (
	"rental-marketplace-backend/availability/repositories"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type AvailabilityController struct {
	AvailabilityRepo repositories.AvailabilityRepository
	DB               *gorm.DB
	AsynqClient      *asynq.Client
}

// Resolve range guard; free-form multi-date selection in the UI never needs
// more than a year at once.
const maxResolveDays = 366
