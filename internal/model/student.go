package model

// Student is a reference to a person managed by a separate collaborator.
// The core never creates or updates students; it only attaches a copy of
// the reference to seats and bookings so views can render the occupant.
//
// Fields:
//  ID    – identifier assigned by the student registry.
//  Name  – display name.
//  Phone – contact number (optional).
//  Email – contact email (optional).
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}
