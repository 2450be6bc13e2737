package domain

// Canteen is read-only directory data sourced from the platform API.
type Canteen struct {
	ID          string
	Name        string
	Location    string
	Description string
	Phone       string
	OpenTime    string
	CloseTime   string
	Rating      float64
	IsOpen      bool
}
