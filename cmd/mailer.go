/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ecocycle/connect/config"
	"github.com/ecocycle/connect/internal/mq"
	"github.com/ecocycle/connect/internal/services"
)

// mailerCmd represents the mailer command
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Consumes account events from the broker and logs outgoing mail",
	Long: `Consumes account events published by the reference backend and logs the
mail that would be sent, including password reset tokens. Usage:

	ECOCYCLE_EVENTS_BACKEND=rabbitmq ecocycle mailer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch cfg.Events.Backend {
		case config.EventsRabbitMQ, config.EventsPubSub:
		default:
			return fmt.Errorf("mailer needs a shared broker; events.backend is %q (use rabbitmq or pubsub)", cfg.Events.Backend)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.Events)
		if err != nil {
			return err
		}
		defer queue.Close()

		logger.Info("mailer listening", "backend", cfg.Events.Backend, "channel", cfg.Events.Channel)
		err = queue.Subscribe(ctx, cfg.Events.Channel, services.LogMailer(logger))
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mailer stopped: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
