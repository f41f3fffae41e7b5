package company

import "time"

type Company struct {
	ID        string
	Name      string
	HQLat     *float64
	HQLng     *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasHeadquarters reports whether a geofence center is configured.
func (c Company) HasHeadquarters() bool {
	return c.HQLat != nil && c.HQLng != nil
}
