package controllers

import (
	"rental-marketplace-backend/bookings/repositories"
	"rental-marketplace-backend/bookings/services"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type BookingController struct {
	BookingRepo repositories.BookingRepository
	DB          *gorm.DB
	Guard       *services.InflightGuard
	AsynqClient *asynq.Client
}
