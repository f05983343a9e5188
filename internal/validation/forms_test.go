package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocycle/connect/types"
)

func validIndustry() RegistrationForm {
	return RegistrationForm{
		Email:           "ops@acme.in",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            types.RoleIndustry,
		Name:            "Priya",
		CompanyName:     "Acme Textiles",
		GSTNumber:       "27AAPFU0939F1ZV",
	}
}

func validArtisan() RegistrationForm {
	return RegistrationForm{
		Email:           "ravi@craft.in",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            types.RoleArtisan,
		Name:            "Ravi",
		Location:        "Jaipur",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *Error
	require.True(t, errors.As(err, &vErr), "expected *validation.Error, got %v", err)
	return vErr.Fields
}

func TestRegistration_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Registration(validIndustry()))
	assert.NoError(t, v.Registration(validArtisan()))
}

func TestRegistration_IndustryRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegistrationForm)
		field  string
		want   string
	}{
		{"bad gst", func(f *RegistrationForm) { f.GSTNumber = "27AAPFU0939F1Z" }, "gstNumber", "Invalid GST number"},
		{"lowercase gst", func(f *RegistrationForm) { f.GSTNumber = "27aapfu0939f1zv" }, "gstNumber", "Invalid GST number"},
		{"missing gst", func(f *RegistrationForm) { f.GSTNumber = "" }, "gstNumber", "GST number is required"},
		{"missing company", func(f *RegistrationForm) { f.CompanyName = "  " }, "companyName", "Company name is required"},
		{"missing contact", func(f *RegistrationForm) { f.Name = "" }, "name", "Contact person name is required"},
		{"bad email", func(f *RegistrationForm) { f.Email = "not-an-email" }, "email", "Invalid email"},
		{"missing email", func(f *RegistrationForm) { f.Email = "" }, "email", "Email is required"},
		{"short password", func(f *RegistrationForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, "password", "Password must be at least 6 characters"},
		{"mismatch", func(f *RegistrationForm) { f.ConfirmPassword = "other12" }, "confirmPassword", "Passwords must match"},
		{"missing confirm", func(f *RegistrationForm) { f.ConfirmPassword = "" }, "confirmPassword", "Confirm password is required"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validIndustry()
			tt.mutate(&form)
			fields := fieldErrors(t, v.Registration(form))
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestRegistration_ArtisanRules(t *testing.T) {
	v := New()

	form := validArtisan()
	form.Location = ""
	form.Name = ""
	fields := fieldErrors(t, v.Registration(form))
	assert.Equal(t, "Location is required", fields["location"])
	assert.Equal(t, "Name is required", fields["name"])
	assert.NotContains(t, fields, "gstNumber", "artisans need no GST number")
	assert.NotContains(t, fields, "companyName")
}

func TestRegistration_RoleMustBeSelfService(t *testing.T) {
	v := New()

	form := validArtisan()
	form.Role = types.RoleAdmin
	fields := fieldErrors(t, v.Registration(form))
	assert.Equal(t, "Role must be industry or artisan", fields["role"])
}

func TestRegistration_ErrorString(t *testing.T) {
	v := New()
	form := validArtisan()
	form.Email = ""
	form.Location = ""

	err := v.Registration(form)
	require.Error(t, err)
	assert.Equal(t, "validation failed: email: Email is required; location: Location is required", err.Error())
}

func TestRegistrationForm_RegisterData(t *testing.T) {
	industry := validIndustry()
	industry.Location = "Pune"
	industry.Email = "  ops@acme.in "
	data := industry.RegisterData()
	assert.Equal(t, types.RegisterData{
		Email:       "ops@acme.in",
		Password:    "secret1",
		Role:        types.RoleIndustry,
		Name:        "Priya",
		CompanyName: "Acme Textiles",
		GSTNumber:   "27AAPFU0939F1ZV",
	}, data)

	artisan := validArtisan()
	artisan.CompanyName = "ignored"
	data = artisan.RegisterData()
	assert.Empty(t, data.CompanyName)
	assert.Equal(t, "Jaipur", data.Location)
}

func TestLoginAndPasswordForms(t *testing.T) {
	v := New()

	assert.NoError(t, v.Login(LoginForm{Email: "a@b.com", Password: "pw"}))
	fields := fieldErrors(t, v.Login(LoginForm{Email: "a@b.com"}))
	assert.Equal(t, "Password is required", fields["password"])

	assert.NoError(t, v.ForgotPassword(ForgotPasswordForm{Email: "a@b.com"}))
	fields = fieldErrors(t, v.ForgotPassword(ForgotPasswordForm{Email: "nope"}))
	assert.Equal(t, "Invalid email", fields["email"])

	assert.NoError(t, v.ResetPassword(ResetPasswordForm{Token: "t", Password: "secret1", ConfirmPassword: "secret1"}))
	fields = fieldErrors(t, v.ResetPassword(ResetPasswordForm{Password: "secret1", ConfirmPassword: "secret2"}))
	assert.Equal(t, "Reset token is required", fields["token"])
	assert.Equal(t, "Passwords must match", fields["confirmPassword"])
}

func TestIsValidGSTIN(t *testing.T) {
	assert.True(t, IsValidGSTIN("29ABCDE1234F1Z5"))
	assert.False(t, IsValidGSTIN("29ABCDE1234F0Z5"), "entity code cannot be 0")
	assert.False(t, IsValidGSTIN(""))
}
