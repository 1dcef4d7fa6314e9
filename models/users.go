package models

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleKitchen Role = "kitchen"
)

// User is a PIN-authenticated operator. PinHash holds a bcrypt hash.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	PinHash  string `json:"-"`
}
