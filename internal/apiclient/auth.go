package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/ecocycle/connect/types"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Login exchanges credentials for an identity and a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (types.AuthResult, error) {
	var result types.AuthResult
	err := c.do(ctx, OpLogin, http.MethodPost, "auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &result)
	if err != nil {
		return types.AuthResult{}, err
	}
	if err := checkAuthResult(OpLogin, result); err != nil {
		return types.AuthResult{}, err
	}
	return result, nil
}

// Register creates an account and returns its identity and bearer token.
func (c *Client) Register(ctx context.Context, data types.RegisterData) (types.AuthResult, error) {
	var result types.AuthResult
	if err := c.do(ctx, OpRegister, http.MethodPost, "auth/register", data, &result); err != nil {
		return types.AuthResult{}, err
	}
	if err := checkAuthResult(OpRegister, result); err != nil {
		return types.AuthResult{}, err
	}
	return result, nil
}

// CurrentIdentity resolves the identity behind the stored token.
func (c *Client) CurrentIdentity(ctx context.Context) (types.Identity, error) {
	var identity types.Identity
	if err := c.do(ctx, OpCurrentUser, http.MethodGet, "auth/me", nil, &identity); err != nil {
		return types.Identity{}, err
	}
	if strings.TrimSpace(identity.ID) == "" {
		return types.Identity{}, &Error{
			Op:      OpCurrentUser,
			Status:  http.StatusOK,
			Message: FallbackMessage(OpCurrentUser),
			Err:     ErrMalformedResponse,
		}
	}
	return identity, nil
}

// ForgotPassword asks the backend to send a reset link to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, OpForgotPassword, http.MethodPost, "auth/forgot-password", forgotPasswordRequest{Email: email}, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, OpResetPassword, http.MethodPost, "auth/reset-password", resetPasswordRequest{
		Token:    token,
		Password: password,
	}, nil)
}

func checkAuthResult(op Operation, result types.AuthResult) error {
	if strings.TrimSpace(result.Token) == "" || strings.TrimSpace(result.User.ID) == "" {
		return &Error{
			Op:      op,
			Status:  http.StatusOK,
			Message: FallbackMessage(op),
			Err:     ErrMalformedResponse,
		}
	}
	return nil
}
