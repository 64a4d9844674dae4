package domain

type Cabin struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	MaxCapacity  int     `json:"max_capacity"`
	RegularPrice float64 `json:"regular_price"`
	Discount     float64 `json:"discount"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
}

// NightlyPrice is the price per night after discount.
func (c *Cabin) NightlyPrice() float64 {
	return c.RegularPrice - c.Discount
}

type Settings struct {
	MinBookingLength    int     `json:"min_booking_length"`
	MaxBookingLength    int     `json:"max_booking_length"`
	MaxGuestsPerBooking int     `json:"max_guests_per_booking"`
	BreakfastPrice      float64 `json:"breakfast_price"`
}

type CapacityFilter string

const (
	CapacityAll    CapacityFilter = "all"
	CapacitySmall  CapacityFilter = "small"
	CapacityMedium CapacityFilter = "medium"
	CapacityLarge  CapacityFilter = "large"
)

// ParseCapacityFilter falls back to CapacityAll for unknown values.
func ParseCapacityFilter(s string) CapacityFilter {
	switch CapacityFilter(s) {
	case CapacitySmall, CapacityMedium, CapacityLarge:
		return CapacityFilter(s)
	default:
		return CapacityAll
	}
}

func (f CapacityFilter) Matches(c Cabin) bool {
	switch f {
	case CapacitySmall:
		return c.MaxCapacity <= 3
	case CapacityMedium:
		return c.MaxCapacity >= 4 && c.MaxCapacity <= 7
	case CapacityLarge:
		return c.MaxCapacity >= 8
	default:
		return true
	}
}
