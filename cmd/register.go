/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/internal/validation"
	"github.com/ecocycle/connect/types"
)

var registerForm validation.RegistrationForm

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an industry or artisan account",
	Long: `Creates an account and signs in to it. The session is kept until logout.

Industries need --company and --gst. Artisans need --location.

	ecocycle register --role industry -e ops@steel.example --name "Asha Rao" \
		--company "Steelworks" --gst 27AAACT2727Q1ZZ
	ecocycle register --role artisan -e ravi@example.com --name Ravi --location Pune`,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := registerForm
		var err error
		if form.Password == "" {
			if form.Password, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
				return err
			}
		}
		if form.ConfirmPassword == "" {
			if form.ConfirmPassword, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Confirm password: "); err != nil {
				return err
			}
		}

		if err := validation.New().Registration(form); err != nil {
			return printValidation(err)
		}

		s, err := openSession(cmd.Context(), sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.manager.Register(cmd.Context(), form.RegisterData()); err != nil {
			return err
		}

		identity, _ := s.manager.Identity()
		printer.Success("Account created for %s (%s)", identity.Email, identity.Role)
		if identity.Role == types.RoleIndustry && !identity.IsVerified {
			printer.Info("Your company will be verified by the EcoCycle team")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	f := registerCmd.Flags()
	f.StringVarP(&registerForm.Email, "email", "e", "", "account e-mail")
	f.StringVarP(&registerForm.Password, "password", "p", "", "password, at least 6 characters (prompted when omitted)")
	f.StringVar(&registerForm.ConfirmPassword, "confirm-password", "", "repeat the password (prompted when omitted)")
	f.StringVar((*string)(&registerForm.Role), "role", "", "industry or artisan")
	f.StringVar(&registerForm.Name, "name", "", "your name, or the contact person for industries")
	f.StringVar(&registerForm.CompanyName, "company", "", "company name (industry)")
	f.StringVar(&registerForm.GSTNumber, "gst", "", "GST number (industry)")
	f.StringVar(&registerForm.Location, "location", "", "city and state (artisan)")
}
