package models

const (
	// Reservation statuses returned by the marketplace backend. Only
	// InUse and Handling block a new booking.
	StatusInUse    = "InUse"
	StatusHandling = "Handling"

	CategoryHour = "Hour"
	CategoryDay  = "Day"
)

const (
	PriceModeHourly = "hourly"
	PriceModeDaily  = "daily"
)

const (
	StepSelectMode  = "select_mode"
	StepSelectDate  = "select_date"
	StepSelectTime  = "select_time"
	StepReadyToBook = "ready_to_book"
)

const (
	// DefaultSessionTTL lifetime of a booking session in Redis, seconds
	DefaultSessionTTL = 24 * 60 * 60

	// DefaultMaxAdvanceDays how far ahead the around-the-clock picker may start
	DefaultMaxAdvanceDays = 1

	// DefaultMinDurationMinutes minimal booking length in hourly modes
	DefaultMinDurationMinutes = 60

	// DefaultBackendTimeout backend HTTP timeout in seconds
	DefaultBackendTimeout = 10

	// DefaultRefreshInterval snapshot refresh interval in seconds
	DefaultRefreshInterval = 5 * 60

	// RateLimitRequests requests allowed per window
	RateLimitRequests = 30

	// RateLimitWindow rate limit window in seconds
	RateLimitWindow = 60
)
