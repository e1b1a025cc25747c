package request

// SignInRequest is the request body for signing in by name
type SignInRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
}

// ConfirmSuggestionRequest is the request body for signing in as a
// suggested existing guest
type ConfirmSuggestionRequest struct {
	GuestID  string `json:"guest_id"`
	Nickname string `json:"nickname,omitempty"`
}

// ElevateRoleRequest is the request body for granting a privileged role
type ElevateRoleRequest struct {
	AccessCode string `json:"access_code"`
	Role       string `json:"role"`
}
