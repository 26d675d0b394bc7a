package authmodel

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	// Username is the back-office login name.
	// Required: Yes
	// Example: "agent.smith"
	Username string `json:"username"`

	// Password is sent as entered.
	// Required: Yes
	// Security: Never log or persist this value
	Password string `json:"password"`
}

// MobileLoginRequest is the body of POST /auth/login/mobile.
type MobileLoginRequest struct {
	// MobileNumber identifies the account by its registered phone number.
	// Required: Yes
	// Example: "+919876543210"
	MobileNumber string `json:"mobileNumber"`

	// Password is sent as entered.
	// Required: Yes
	// Security: Never log or persist this value
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	// RefreshToken is the opaque token returned by the last login or rotation.
	// Required: Yes
	// Behavior: The backend may rotate it, returning a replacement
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest is the body of POST /auth/register. New accounts get the
// user role.
type RegisterRequest struct {
	// Username must be 3 to 50 letters, digits or underscores.
	// Required: Yes
	Username string `json:"username"`

	// Email is optional.
	Email string `json:"email,omitempty"`

	// Password must be 8 to 100 characters.
	// Required: Yes
	// Security: Never log or persist this value
	Password string `json:"password"`

	// MobileNumber is optional and enables mobile login.
	MobileNumber string `json:"mobileNumber,omitempty"`
}
