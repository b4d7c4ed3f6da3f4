package domain

// Role gates access to administrative endpoints
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// User is the authenticated user summary kept in the session
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// AuthResult is returned by login, registration and refresh
type AuthResult struct {
	Token     string `json:"token"`
	Type      string `json:"type,omitempty"`
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
}

// User extracts the user summary
func (a AuthResult) User() User {
	return User{ID: a.ID, FullName: a.FullName, Email: a.Email, Role: a.Role}
}

// Credentials for login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration profile and credentials of a new customer
type Registration struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Address         string `json:"address,omitempty"`
	ContactNumber   string `json:"contactNumber,omitempty"`
}
