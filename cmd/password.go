/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/internal/validation"
)

var (
	forgotEmail string
	resetForm   validation.ResetPasswordForm
)

// forgotPasswordCmd represents the forgot-password command
var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := validation.ForgotPasswordForm{Email: forgotEmail}
		if err := validation.New().ForgotPassword(form); err != nil {
			return printValidation(err)
		}

		s, err := openSession(cmd.Context(), sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.client.ForgotPassword(cmd.Context(), form.Email); err != nil {
			return err
		}
		printer.Success("If the email exists, a reset link has been sent")
		return nil
	},
}

// resetPasswordCmd represents the reset-password command
var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with a reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := resetForm
		var err error
		if form.Password == "" {
			if form.Password, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "New password: "); err != nil {
				return err
			}
		}
		if form.ConfirmPassword == "" {
			if form.ConfirmPassword, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Confirm password: "); err != nil {
				return err
			}
		}
		if err := validation.New().ResetPassword(form); err != nil {
			return printValidation(err)
		}

		s, err := openSession(cmd.Context(), sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.client.ResetPassword(cmd.Context(), form.Token, form.Password); err != nil {
			return err
		}
		printer.Success("Password reset. Run 'ecocycle login' with the new password.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(resetPasswordCmd)

	forgotPasswordCmd.Flags().StringVarP(&forgotEmail, "email", "e", "", "account e-mail")

	resetPasswordCmd.Flags().StringVar(&resetForm.Token, "token", "", "reset token from the reset link")
	resetPasswordCmd.Flags().StringVarP(&resetForm.Password, "password", "p", "", "new password (prompted when omitted)")
	resetPasswordCmd.Flags().StringVar(&resetForm.ConfirmPassword, "confirm-password", "", "repeat the new password (prompted when omitted)")
}
