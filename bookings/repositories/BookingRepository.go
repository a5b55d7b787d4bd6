package repositories

import (
	"errors"
	"fmt"

	"rental-marketplace-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	GetBookingByID(bookingID uuid.UUID) (*models.Booking, error)
	GetFilteredBookings(userID uuid.UUID, role string, filters map[string]string, limit, offset int) ([]models.Booking, int64, error)
	CreateBookings(tx *gorm.DB, bookings []*models.Booking) error
	SaveBooking(tx *gorm.DB, booking *models.Booking) error
	NextBookingSequence(tx *gorm.DB) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{
		db: db,
	}
}

func (r *bookingRepository) GetBookingByID(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Preload("Listing").First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking with id '%s' not found", bookingID)
		}
		return nil, err
	}
	return &booking, nil
}

// bookingsQueryBuilder builds queries for booking filtering
type bookingsQueryBuilder struct {
	query   *gorm.DB
	filters map[string]string
}

func newBookingsQueryBuilder(db *gorm.DB, filters map[string]string) *bookingsQueryBuilder {
	return &bookingsQueryBuilder{
		query:   db.Model(&models.Booking{}),
		filters: filters,
	}
}

func (bqb *bookingsQueryBuilder) applyParticipantFilter(userID uuid.UUID, role string) *bookingsQueryBuilder {
	switch role {
	case "renter":
		bqb.query = bqb.query.Where("renter_id = ?", userID)
	case "owner":
		bqb.query = bqb.query.Where("owner_id = ?", userID)
	default:
		bqb.query = bqb.query.Where("renter_id = ? OR owner_id = ?", userID, userID)
	}
	return bqb
}

func (bqb *bookingsQueryBuilder) applyBasicBookingFilters() *bookingsQueryBuilder {
	if status, ok := bqb.filters["status"]; ok && status != "" {
		bqb.query = bqb.query.Where("status = ?", status)
	}
	if listingID, ok := bqb.filters["listing_id"]; ok && listingID != "" {
		bqb.query = bqb.query.Where("listing_id = ?", listingID)
	}
	if paymentStatus, ok := bqb.filters["payment_status"]; ok && paymentStatus != "" {
		bqb.query = bqb.query.Where("payment_status = ?", paymentStatus)
	}
	return bqb
}

func (bqb *bookingsQueryBuilder) applyBookingDateRangeFilter() *bookingsQueryBuilder {
	startDate := bqb.filters["start_date"]
	endDate := bqb.filters["end_date"]

	if startDate != "" && startDate != "null" && endDate != "" && endDate != "null" {
		bqb.query = bqb.query.Where("start_date <= ? AND end_date >= ?", endDate, startDate)
	}
	return bqb
}

func (bqb *bookingsQueryBuilder) applyLatestOrder() *bookingsQueryBuilder {
	bqb.query = bqb.query.Order("created_at DESC")
	return bqb
}

// GetFilteredBookings returns the requester's bookings for one side of the
// marketplace with optional status/listing/date filters.
func (r *bookingRepository) GetFilteredBookings(userID uuid.UUID, role string, filters map[string]string, limit, offset int) ([]models.Booking, int64, error) {
	bqb := newBookingsQueryBuilder(r.db, filters).
		applyParticipantFilter(userID, role).
		applyBasicBookingFilters().
		applyBookingDateRangeFilter()

	var total int64
	if err := bqb.query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []models.Booking
	if err := bqb.applyLatestOrder().query.
		Preload("Listing").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *bookingRepository) CreateBookings(tx *gorm.DB, bookings []*models.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return tx.Create(&bookings).Error
}

func (r *bookingRepository) SaveBooking(tx *gorm.DB, booking *models.Booking) error {
	return tx.Save(booking).Error
}

// NextBookingSequence feeds utils.FormatBookingNumber. Counting inside the
// submit transaction keeps numbers unique enough for display; the id is the
// real identity.
func (r *bookingRepository) NextBookingSequence(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.Booking{}).Unscoped().Count(&count).Error; err != nil {
		return 0, err
	}
	return count + 1, nil
}
