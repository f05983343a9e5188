package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ecocycle/connect/types"
)

// RegistrationForm is the registration input before it becomes a request.
// Industries must give a company name and a GST number; artisans a location.
type RegistrationForm struct {
	Email           string     `json:"email" validate:"required,email"`
	Password        string     `json:"password" validate:"required,min=6"`
	ConfirmPassword string     `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            types.Role `json:"role" validate:"required,oneof=industry artisan"`
	Name            string     `json:"name" validate:"required"`
	CompanyName     string     `json:"companyName" validate:"required_if=Role industry"`
	GSTNumber       string     `json:"gstNumber" validate:"required_if=Role industry,gstin"`
	Location        string     `json:"location" validate:"required_if=Role artisan"`
}

// RegisterData converts a validated form into the request payload, keeping
// only the fields that belong to the chosen role.
func (f RegistrationForm) RegisterData() types.RegisterData {
	data := types.RegisterData{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     f.Role,
		Name:     strings.TrimSpace(f.Name),
	}
	switch f.Role {
	case types.RoleIndustry:
		data.CompanyName = strings.TrimSpace(f.CompanyName)
		data.GSTNumber = strings.TrimSpace(f.GSTNumber)
	case types.RoleArtisan:
		data.Location = strings.TrimSpace(f.Location)
	}
	return data
}

// LoginForm is the login input.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordForm is the password reset request input.
type ForgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordForm sets a new password with a reset token.
type ResetPasswordForm struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Registration validates a registration form field by field.
func (v *Validator) Registration(form RegistrationForm) error {
	form.Email = strings.TrimSpace(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	form.CompanyName = strings.TrimSpace(form.CompanyName)
	form.GSTNumber = strings.TrimSpace(form.GSTNumber)
	form.Location = strings.TrimSpace(form.Location)
	return v.check(form, registrationMessage)
}

// Login validates a login form.
func (v *Validator) Login(form LoginForm) error {
	form.Email = strings.TrimSpace(form.Email)
	return v.check(form, credentialMessage)
}

// ForgotPassword validates a reset request.
func (v *Validator) ForgotPassword(form ForgotPasswordForm) error {
	form.Email = strings.TrimSpace(form.Email)
	return v.check(form, credentialMessage)
}

// ResetPassword validates a new password submission.
func (v *Validator) ResetPassword(form ResetPasswordForm) error {
	form.Token = strings.TrimSpace(form.Token)
	return v.check(form, credentialMessage)
}

func registrationMessage(fe validator.FieldError, form any) string {
	switch fe.Field() {
	case "role":
		return "Role must be industry or artisan"
	case "name":
		if f, ok := form.(RegistrationForm); ok && f.Role == types.RoleIndustry {
			return "Contact person name is required"
		}
		return "Name is required"
	case "companyName":
		return "Company name is required"
	case "gstNumber":
		if fe.Tag() == "gstin" {
			return "Invalid GST number"
		}
		return "GST number is required"
	case "location":
		return "Location is required"
	}
	return credentialMessage(fe, form)
}

func credentialMessage(fe validator.FieldError, _ any) string {
	switch fe.Field() + "/" + fe.Tag() {
	case "email/required":
		return "Email is required"
	case "email/email":
		return "Invalid email"
	case "password/required":
		return "Password is required"
	case "password/min":
		return "Password must be at least 6 characters"
	case "confirmPassword/required":
		return "Confirm password is required"
	case "confirmPassword/eqfield":
		return "Passwords must match"
	case "token/required":
		return "Reset token is required"
	}
	return ""
}
