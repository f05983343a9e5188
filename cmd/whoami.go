/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/internal/credentials"
)

var whoamiClock = clockwork.NewRealClock()

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), sessionOptions{restore: true, expiryHint: true})
		if err != nil {
			return err
		}
		defer s.Close()

		identity, ok := s.manager.Identity()
		if !ok {
			return errNotLoggedIn
		}

		printer.Header(identity.Name)
		printer.Field("Email", identity.Email)
		printer.Field("Role", string(identity.Role))
		if identity.CompanyName != "" {
			printer.Field("Company", identity.CompanyName)
		}
		if identity.GSTNumber != "" {
			printer.Field("GST", identity.GSTNumber)
		}
		if identity.Location != "" {
			printer.Field("Location", identity.Location)
		}
		verified := "no"
		if identity.IsVerified {
			verified = "yes"
		}
		printer.Field("Verified", verified)
		if !identity.CreatedAt.IsZero() {
			printer.Field("Member since", identity.CreatedAt.Format("2006-01-02"))
		}

		kept := "this terminal"
		if _, durable := s.creds.Peek(credentials.Durable); durable {
			kept = "until logout"
		}
		printer.Field("Session", kept)

		token, _ := s.creds.Read()
		claims, err := credentials.Inspect(token, whoamiClock)
		switch {
		case errors.Is(err, credentials.ErrOpaqueToken):
		case err != nil:
			logger.Debug("cannot inspect token", "error", err)
		case !claims.ExpiresAt.IsZero():
			left := claims.TimeLeft(whoamiClock.Now()).Round(time.Minute)
			printer.Field("Expires", claims.ExpiresAt.Local().Format(time.RFC1123)+" (in "+left.String()+")")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
