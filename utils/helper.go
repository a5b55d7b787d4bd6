package utils

import (
	"fmt"
	"time"
)

// FormatBookingNumber formats a sequence number into a booking number
func FormatBookingNumber(sequence int64) string {
	year := time.Now().Year()
	return fmt.Sprintf("BK-%d-%05d", year, sequence)
}
