package handler

// --- Request types ---

type createPrincipalRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8"`
	Role        string `json:"role"         validate:"required,oneof=Admin User"`
}

type updatePrincipalRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"  validate:"omitempty,oneof=Admin User"`
	Active      *bool   `json:"active,omitempty"`
}
