/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/internal/validation"
)

var (
	loginEmail    string
	loginPassword string
	loginRemember bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to EcoCycle Connect",
	Long: `Signs in with e-mail and password. Missing values are prompted for.

By default the session lasts for this terminal only. With --remember it is kept
until you log out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if loginEmail == "" {
			if loginEmail, err = prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "Email: "); err != nil {
				return err
			}
		}
		if loginPassword == "" {
			if loginPassword, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
				return err
			}
		}

		form := validation.LoginForm{Email: loginEmail, Password: loginPassword}
		if err := validation.New().Login(form); err != nil {
			return printValidation(err)
		}

		s, err := openSession(cmd.Context(), sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.manager.Login(cmd.Context(), form.Email, form.Password, loginRemember); err != nil {
			return err
		}

		identity, _ := s.manager.Identity()
		printer.Success("Signed in as %s (%s)", identity.Email, identity.Role)
		if loginRemember {
			printer.Info("Session kept until you run 'ecocycle logout'")
		} else {
			printer.Info("Session lasts for this terminal only")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account e-mail")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")
	loginCmd.Flags().BoolVarP(&loginRemember, "remember", "r", false, "keep the session after this terminal closes")
}
