package reservation

import "time"

const day = 24 * time.Hour

// Quote is the priced rental window. Days and Total are zero when IsValid is false.
type Quote struct {
	Days    int   `json:"days"`
	Total   int64 `json:"total"`
	IsValid bool  `json:"is_valid"`
}

// CalculateQuote prices a rental: days = max(1, ceil((ret-pickup)/24h)), total = days*dailyRate.
// A missing date or a return before pickup yields an invalid, zero quote.
func CalculateQuote(dailyRate int64, pickup, ret time.Time) Quote {
	if pickup.IsZero() || ret.IsZero() || ret.Before(pickup) {
		return Quote{}
	}

	span := ret.Sub(pickup)
	days := int(span / day)
	if span%day != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}

	return Quote{
		Days:    days,
		Total:   int64(days) * dailyRate,
		IsValid: true,
	}
}
