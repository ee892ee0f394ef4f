package schemas

// RegisterRequest is the payload for account registration.
// Role is optional and limited to the self-assignable roles; admins are
// created through the admin users resource, never via registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user publisher"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateDetailsRequest updates the whitelisted profile fields only.
type UpdateDetailsRequest struct {
	Name  string `json:"name" validate:"omitempty,max=50"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordRequest changes the password of the authenticated account.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// ForgotPasswordRequest starts the reset flow for the given email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the replacement password; the reset token
// itself travels in the path.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// CreateUserRequest is the admin-only payload for creating accounts.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user publisher admin"`
}

// UpdateUserRequest is the admin-only payload for updating accounts.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"omitempty,max=50"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  Role   `json:"role" validate:"omitempty,oneof=user publisher admin"`
}

// BootcampRequest creates or replaces the client-settable bootcamp fields.
type BootcampRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"required,max=500"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Phone       string   `json:"phone" validate:"omitempty,max=20"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Address     string   `json:"address" validate:"omitempty,max=200"`
	Careers     []string `json:"careers" validate:"omitempty,dive,max=50"`
	Housing     bool     `json:"housing"`
	JobAssist   bool     `json:"jobAssistance"`
}

// CourseRequest creates or replaces the client-settable course fields.
type CourseRequest struct {
	Title        string  `json:"title" validate:"required,max=100"`
	Description  string  `json:"description" validate:"required,max=500"`
	Weeks        string  `json:"weeks" validate:"required"`
	Tuition      float64 `json:"tuition" validate:"required,gte=0"`
	MinimumSkill string  `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	Scholarship  bool    `json:"scholarshipAvailable"`
}

// ReviewRequest creates or replaces the client-settable review fields.
type ReviewRequest struct {
	Title  string  `json:"title" validate:"required,max=100"`
	Text   string  `json:"text" validate:"required,max=1000"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=10"`
}
