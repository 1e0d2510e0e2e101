package domain

// Role distinguishes shoppers from merchants.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleMerchant Role = "Merchant"
)

// User is the session's current user.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// UserPatch is a partial profile update.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Role   *Role   `json:"role,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Apply returns u with the patch applied.
func (up UserPatch) Apply(u User) User {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Avatar != nil {
		u.Avatar = *up.Avatar
	}
	return u
}
