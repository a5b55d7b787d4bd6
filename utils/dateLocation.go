package utils

import (
	"fmt"
	"os"
	"time"
)

// DateLocation is the application timezone used for all calendar math.
var DateLocation *time.Location

// InitializeDateLocation loads the timezone from APP_TIMEZONE (UTC fallback).
func InitializeDateLocation() error {
	tz := os.Getenv("APP_TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}

	DateLocation = loc
	return nil
}

// Today returns the current date truncated to midnight in the app timezone.
func Today() time.Time {
	loc := DateLocation
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
