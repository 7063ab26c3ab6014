package model

// Serviceman is the worker-side record the dispatcher matches against.
// LocationLat/Lng are nil while the worker is not broadcasting a position.
type Serviceman struct {
	ID          string   `json:"id" db:"id"`
	FullName    string   `json:"full_name" db:"full_name"`
	Phone       string   `json:"phone" db:"phone"`
	Email       string   `json:"email" db:"email"`
	BaseCost    float64  `json:"base_cost" db:"base_cost"`
	Rating      float64  `json:"rating" db:"rating"`
	IsAvailable bool     `json:"is_available" db:"is_available"`
	LocationLat *float64 `json:"location_lat,omitempty" db:"location_lat"`
	LocationLng *float64 `json:"location_lng,omitempty" db:"location_lng"`
}
