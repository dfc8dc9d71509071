package domain

// Role defines the access level of an API caller
type Role string

const (
	// RoleAdmin may manage configurations and trigger syncs for any customer
	RoleAdmin Role = "admin"
	// RoleOperator may trigger syncs and read state for their own customer
	RoleOperator Role = "operator"
)

// AuthContext contains the authenticated caller identity injected into each
// request and propagated into runs as the acting user.
type AuthContext struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	CustomerID string `json:"customer_id"`
}

// IsAdmin checks if the authenticated caller is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccessCustomer reports whether the caller may act on the given customer.
func (a *AuthContext) CanAccessCustomer(customerID string) bool {
	if a.IsAdmin() {
		return true
	}
	return a.CustomerID == customerID
}

// TokenClaims represents the JWT token payload issued by the platform's
// identity service and validated by the API middleware.
type TokenClaims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	CustomerID string `json:"customer_id"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}
