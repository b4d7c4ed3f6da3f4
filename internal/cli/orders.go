package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/order"
	"storefront/internal/session"
)

func newCheckoutCmd() *cobra.Command {
	var f checkout.Form
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart, paid cash on delivery",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Session.Authorize(session.LevelAuthenticated); err != nil {
				return err
			}
			o, err := a.Checkout.PlaceOrder(cmd.Context(), f)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return printJSON(cmd.OutOrStdout(), order.NewView(*o))
			}
			renderOrder(cmd.OutOrStdout(), order.NewView(*o))
			return nil
		}),
	}
	cmd.Flags().StringVar(&f.DeliveryAddress, "address", "", "delivery address, 10 to 500 characters")
	cmd.Flags().StringVar(&f.ContactNumber, "phone", "", "contact number, 10 to 15 digits with optional +")
	cmd.Flags().StringVar(&f.OrderNotes, "notes", "", "notes for the courier")
	return cmd
}

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Follow your orders",
	}
	var pf pageFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Session.Authorize(session.LevelAuthenticated); err != nil {
				return err
			}
			page, err := a.Orders.Mine(cmd.Context(), pf.params())
			if err != nil {
				return err
			}
			return showOrders(cmd, page)
		}),
	}
	pf.register(list)

	show := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order with its progress",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.Session.Authorize(session.LevelAuthenticated); err != nil {
				return err
			}
			v, err := a.Orders.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return showOrder(cmd, v)
		}),
	}
	cmd.AddCommand(list, show)
	return cmd
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Order administration",
	}
	var pf pageFlags
	all := &cobra.Command{
		Use:   "orders",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Session.Authorize(session.LevelAdmin); err != nil {
				return err
			}
			page, err := a.Orders.All(cmd.Context(), pf.params())
			if err != nil {
				return err
			}
			return showOrders(cmd, page)
		}),
	}
	pf.register(all)

	status := &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Move an order to PENDING, PROCESSING, SHIPPED, DELIVERED or CANCELLED",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			if err := a.Session.Authorize(session.LevelAdmin); err != nil {
				return err
			}
			st, err := domain.ParseOrderStatus(args[1])
			if err != nil {
				return fmt.Errorf("status %q: %w", args[1], err)
			}
			v, err := a.Orders.UpdateStatus(cmd.Context(), args[0], st)
			if err != nil {
				return err
			}
			return showOrder(cmd, v)
		}),
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Order counts and delivered revenue",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Session.Authorize(session.LevelAdmin); err != nil {
				return err
			}
			s, err := a.Orders.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return printJSON(cmd.OutOrStdout(), s)
			}
			renderStats(cmd.OutOrStdout(), s)
			return nil
		}),
	}
	cmd.AddCommand(all, status, stats)
	return cmd
}

func showOrders(cmd *cobra.Command, page *domain.Page[domain.Order]) error {
	if outputFormat(cmd) == outputJSON {
		return printJSON(cmd.OutOrStdout(), page)
	}
	renderOrders(cmd.OutOrStdout(), page)
	return nil
}

func showOrder(cmd *cobra.Command, v order.View) error {
	if outputFormat(cmd) == outputJSON {
		return printJSON(cmd.OutOrStdout(), v)
	}
	renderOrder(cmd.OutOrStdout(), v)
	return nil
}
