package domain

import "time"

// User is an account. PasswordHash never leaves the process in outbound
// payloads (handlers must blank it before serialization).
type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"password_hash,omitempty"`
	Name         string          `json:"name"`
	Picture      string          `json:"picture,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Role         UserRole        `json:"role"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
	Preferences  UserPreferences `json:"preferences"`
}

// Redacted returns a copy of the user safe for any outbound payload: the
// password hash is always blanked.
func (u User) Redacted() User {
	u.PasswordHash = ""
	return u
}

// UserPreferences holds client-facing display/notification settings.
type UserPreferences struct {
	DefaultDurationMinutes int      `json:"default_duration_minutes,omitempty"`
	FavoriteSlots          []string `json:"favorite_slots"`
	NotificationsEnabled   bool     `json:"notifications_enabled"`
	EmailReminders         bool     `json:"email_reminders"`
	Language               string   `json:"language"`
	Theme                  string   `json:"theme"`
}

// Session is an opaque bearer-token record (spec §4.C). The AccessToken is
// the storage primary key; RefreshToken is a distinct opaque value indexed
// separately for refresh lookups.
type Session struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	UserID          string    `json:"user_id"`
	UsernameSnap    string    `json:"username"`
	RoleSnap        UserRole  `json:"role"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at instant now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Vehicle is owned by exactly one user.
type Vehicle struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	LicensePlate string      `json:"license_plate"`
	Make         string      `json:"make,omitempty"`
	Model        string      `json:"model,omitempty"`
	Color        string      `json:"color,omitempty"`
	VehicleType  VehicleType `json:"vehicle_type"`
	IsDefault    bool        `json:"is_default"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ParkingLot is a physical site containing floors and slots.
type ParkingLot struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	TotalSlots     int            `json:"total_slots"`
	AvailableSlots int            `json:"available_slots"`
	Floors         []ParkingFloor `json:"floors,omitempty"`
	Amenities      []string       `json:"amenities"`
	Pricing        PricingInfo    `json:"pricing"`
	OperatingHours OperatingHours `json:"operating_hours"`
	Status         LotStatus      `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ParkingFloor is a read-side view: per spec §9's id-index model, slots are
// never persisted inside the floor document; this list is reconstructed on
// read from the slots_by_lot index.
type ParkingFloor struct {
	ID             string         `json:"id"`
	LotID          string         `json:"lot_id"`
	Name           string         `json:"name"`
	FloorNumber    int            `json:"floor_number"`
	TotalSlots     int            `json:"total_slots"`
	AvailableSlots int            `json:"available_slots"`
	Slots          []ParkingSlot  `json:"slots,omitempty"`
}

// ParkingSlot is an individually bookable space. Status is authoritative
// only for Maintenance/Disabled; Available/Reserved is a cache of booking
// state maintained by the booking coordinator.
type ParkingSlot struct {
	ID             string            `json:"id"`
	LotID          string            `json:"lot_id"`
	FloorID        string            `json:"floor_id"`
	SlotNumber     int               `json:"slot_number"`
	Row            int               `json:"row"`
	Column         int               `json:"column"`
	SlotType       SlotType          `json:"slot_type"`
	Status         SlotStatus        `json:"status"`
	CurrentBooking *SlotBookingInfo  `json:"current_booking,omitempty"`
	Features       []SlotFeature     `json:"features"`
	Position       SlotPosition      `json:"position"`
}

// SlotBookingInfo is a brief summary of the active booking covering a slot,
// for display inside a slot's read view.
type SlotBookingInfo struct {
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	LicensePlate  string    `json:"license_plate"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	IsOwnBooking  bool      `json:"is_own_booking"`
}

// SlotPosition is the slot's drawing geometry in the lot's visual layout.
type SlotPosition struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Width    float32 `json:"width"`
	Height   float32 `json:"height"`
	Rotation float32 `json:"rotation"`
}

// PricingInfo describes a lot's rate schedule.
type PricingInfo struct {
	Currency     string        `json:"currency"`
	Rates        []PricingRate `json:"rates"`
	DailyMax     *float64      `json:"daily_max,omitempty"`
	MonthlyPass  *float64      `json:"monthly_pass,omitempty"`
}

// PricingRate is one duration/price tier.
type PricingRate struct {
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Label           string  `json:"label"`
}

// OperatingHours describes a lot's weekly schedule.
type OperatingHours struct {
	Is24h     bool       `json:"is_24h"`
	Monday    *DayHours  `json:"monday,omitempty"`
	Tuesday   *DayHours  `json:"tuesday,omitempty"`
	Wednesday *DayHours  `json:"wednesday,omitempty"`
	Thursday  *DayHours  `json:"thursday,omitempty"`
	Friday    *DayHours  `json:"friday,omitempty"`
	Saturday  *DayHours  `json:"saturday,omitempty"`
	Sunday    *DayHours  `json:"sunday,omitempty"`
}

// DayHours is an open/close pair for a single day, e.g. "08:00"/"22:00".
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Booking is a time-bounded reservation of a single slot by one user.
// Denormalized SlotNumber/FloorName and an embedded Vehicle snapshot keep
// the record self-describing without re-joining lot/slot/vehicle tables.
type Booking struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	LotID         string         `json:"lot_id"`
	SlotID        string         `json:"slot_id"`
	SlotNumber    int            `json:"slot_number"`
	FloorName     string         `json:"floor_name"`
	Vehicle       Vehicle        `json:"vehicle"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Status        BookingStatus  `json:"status"`
	Pricing       BookingPricing `json:"pricing"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CheckInTime   *time.Time     `json:"check_in_time,omitempty"`
	CheckOutTime  *time.Time     `json:"check_out_time,omitempty"`
	QRCode        string         `json:"qr_code,omitempty"`
	Notes         string         `json:"notes,omitempty"`
}

// BookingPricing is the computed cost breakdown for a booking (spec §4.F).
type BookingPricing struct {
	BasePrice     float64       `json:"base_price"`
	Discount      float64       `json:"discount"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	Currency      string        `json:"currency"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
}

// CreateBookingRequest is the wire body for POST /api/v1/bookings.
type CreateBookingRequest struct {
	LotID            string `json:"lot_id"`
	SlotID           string `json:"slot_id"`
	StartTime        time.Time `json:"start_time"`
	DurationMinutes  int    `json:"duration_minutes"`
	VehicleID        string `json:"vehicle_id"`
	LicensePlate     string `json:"license_plate"`
	Notes            string `json:"notes,omitempty"`
}

// AuthTokens is the wire shape for issued/refreshed credentials (spec §6).
type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}
