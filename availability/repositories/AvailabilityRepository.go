package repositories

import (
	"errors"
	"fmt"
	"time"

	"rental-marketplace-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	GetListingByID(listingID uuid.UUID) (*models.Listing, error)
	GetOverlappingBookings(listingID uuid.UUID, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error)
	GetActiveOverrides(listingID uuid.UUID, start, end time.Time) ([]models.AvailabilityOverride, error)
	CreateOverrides(tx *gorm.DB, overrides []models.AvailabilityOverride) error
	DeactivateWithdrawals(tx *gorm.DB, listingID uuid.UUID, dates []time.Time, updatedBy string) (int64, error)
	DeactivateExpiredMaintenance(now time.Time) (int64, error)
}

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepository{
		db: db,
	}
}

func (r *availabilityRepository) GetListingByID(listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.First(&listing, "id = ?", listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing with id '%s' not found", listingID)
		}
		return nil, err
	}
	return &listing, nil
}

// GetOverlappingBookings fetches bookings whose date span touches [start, end].
func (r *availabilityRepository) GetOverlappingBookings(listingID uuid.UUID, start, end time.Time, statuses []models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Where("listing_id = ?", listingID).
		Where("status IN ?", statuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *availabilityRepository) GetActiveOverrides(listingID uuid.UUID, start, end time.Time) ([]models.AvailabilityOverride, error) {
	var overrides []models.AvailabilityOverride
	err := r.db.
		Where("listing_id = ?", listingID).
		Where("is_active = ?", true).
		Where("date BETWEEN ? AND ?", start, end).
		Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *availabilityRepository) CreateOverrides(tx *gorm.DB, overrides []models.AvailabilityOverride) error {
	if len(overrides) == 0 {
		return nil
	}
	return tx.Create(&overrides).Error
}

// DeactivateWithdrawals flips withdrawal overrides inactive for the given
// dates and reports how many rows were touched.
func (r *availabilityRepository) DeactivateWithdrawals(tx *gorm.DB, listingID uuid.UUID, dates []time.Time, updatedBy string) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	result := tx.Model(&models.AvailabilityOverride{}).
		Where("listing_id = ?", listingID).
		Where("kind = ?", models.WithdrawalOverrideKind).
		Where("is_active = ?", true).
		Where("date IN ?", dates).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": updatedBy,
		})
	return result.RowsAffected, result.Error
}

// DeactivateExpiredMaintenance is run by the nightly sweep; expired
// maintenance records stop participating in calendar derivation.
func (r *availabilityRepository) DeactivateExpiredMaintenance(now time.Time) (int64, error) {
	result := r.db.Model(&models.AvailabilityOverride{}).
		Where("kind = ?", models.MaintenanceOverrideKind).
		Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
