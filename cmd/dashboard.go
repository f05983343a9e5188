/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/internal/dashboard"
	"github.com/ecocycle/connect/internal/output"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your marketplace dashboard",
	Long: `Shows the stats and recent activity for your role.

Industries see their listings and incoming requests, artisans see available
materials and their own requests, admins see platform totals.`,
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

		snapshot, err := s.client.Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		return renderDashboard(dashboard.Build(identity, snapshot))
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func renderDashboard(view dashboard.View) error {
	printer.Header(view.Greeting)
	printer.Print("%s", view.Subtitle)

	cards := output.NewPrinterTable(printer, []string{"Stat", "Value"})
	for _, card := range view.Cards {
		cards.AddRow(card.Label, card.Value)
	}
	printer.Print("")
	if err := cards.Render(); err != nil {
		return err
	}

	printer.Header(view.MaterialsTitle)
	if len(view.Materials) == 0 {
		printer.Info("No materials yet")
	} else {
		materials := output.NewPrinterTable(printer, []string{"Name", "Category", "Location", "Quantity", "Price"})
		for _, m := range view.Materials {
			materials.AddRow(m.Name, m.Category, m.Location, m.Quantity, m.Price)
		}
		if err := materials.Render(); err != nil {
			return err
		}
	}

	printer.Header("Recent Requests")
	if len(view.Requests) == 0 {
		printer.Info("No requests yet")
	} else {
		requests := output.NewPrinterTable(printer, []string{"Material", "Party", "Status", "Amount"})
		for _, r := range view.Requests {
			requests.AddRow(r.Material, r.Counterparty, printer.Status(string(r.Status)), r.Amount)
		}
		if err := requests.Render(); err != nil {
			return err
		}
	}

	if len(view.QuickActions) > 0 {
		printer.Header("Quick Actions")
		for _, action := range view.QuickActions {
			printer.Print("  - %s", action)
		}
	}
	return nil
}
