package domain

// Stats is the read-only projection over all collections exposed to
// administrators. The revenue field keeps its historical wire name.
type Stats struct {
	Listings     int     `json:"listings"`
	Users        int     `json:"users"`
	Payments     int     `json:"payments"`
	TotalRevenue float64 `json:"revenusTotaux"`
}
