package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tyemirov/teamnest/pkg/rolegate"
)

func newOrdersCommand() *cobra.Command {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "View orders",
	}

	ordersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your orders",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			orders, listErr := app.client.Orders.List(command.Context())
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tSTATUS\tTOTAL\tCREATED")
			for _, order := range orders {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					order.ID, order.Status, formatCents(order.TotalCents, order.Currency), order.CreatedAt)
			}
			return writer.Flush()
		},
	})

	ordersCmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			order, getErr := app.client.Orders.Get(command.Context(), arguments[0])
			if getErr != nil {
				return getErr
			}
			out := command.OutOrStdout()
			fmt.Fprintf(out, "Order %s: %s, total %s\n",
				order.ID, order.Status, formatCents(order.TotalCents, order.Currency))
			for _, item := range order.LineItems {
				fmt.Fprintf(out, "  - %s: %s\n", item.Description, formatCents(item.AmountCents, order.Currency))
			}
			return nil
		},
	})

	return ordersCmd
}

func newPayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <order-id>",
		Short: "Pay an order through the payment provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapOrdersPay); guardErr != nil {
				return guardErr
			}
			confirmer, confirmerErr := buildPaymentConfirmer(app.logger)
			if confirmerErr != nil {
				return confirmerErr
			}

			intent, intentErr := app.client.Payments.CreateIntent(command.Context(), arguments[0])
			if intentErr != nil {
				return intentErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Confirming payment of %s...\n",
				formatCents(intent.AmountCents, intent.Currency))

			result, confirmErr := confirmer.Confirm(command.Context(), intent.ClientSecret)
			if confirmErr != nil {
				return confirmErr
			}
			if !result.Succeeded() {
				return fmt.Errorf("cli.payment_declined: %s", result.Message)
			}

			order, completeErr := app.client.Payments.Complete(command.Context(), intent.ID)
			if completeErr != nil {
				return completeErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Payment complete. Order %s is now %s.\n", order.ID, order.Status)
			return nil
		},
	}
}
