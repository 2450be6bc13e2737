package domain

// User is the snapshot of the signed-in user kept between page loads.
type User struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"` // student, faculty or staff
	Department     string  `json:"department,omitempty"`
	CanteenCredits float64 `json:"canteen_credits,omitempty"`
}
