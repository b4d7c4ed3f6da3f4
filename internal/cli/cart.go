package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/app"
)

type cartView struct {
	Items      any    `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPrice string `json:"totalPrice"`
	Problem    string `json:"problem,omitempty"`
}

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the cart",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE:  withApp(showCart),
		},
		&cobra.Command{
			Use:   "add <product-id> [quantity]",
			Short: "Add a product, merging with an existing line",
			Args:  cobra.RangeArgs(1, 2),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
				qty := 1
				if len(args) == 2 {
					n, err := strconv.Atoi(args[1])
					if err != nil {
						return fmt.Errorf("quantity %q: %w", args[1], err)
					}
					qty = n
				}
				p, err := a.Client.Product(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := a.Cart.AddItem(cmd.Context(), *p, qty); err != nil {
					return err
				}
				return showCart(cmd, nil, a)
			}),
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Overwrite a line's quantity; zero removes it",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q: %w", args[1], err)
				}
				if err := a.Cart.UpdateQuantity(cmd.Context(), args[0], n); err != nil {
					return err
				}
				return showCart(cmd, nil, a)
			}),
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a line",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
				return a.Cart.RemoveItem(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
				return a.Cart.Clear(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Refresh lines from the catalog and drop unavailable products",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
				res, err := a.SyncCart(cmd.Context())
				if err != nil {
					return err
				}
				if !res.Changed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cart is up to date")
				}
				return showCart(cmd, nil, a)
			}),
		},
	)
	return cmd
}

func showCart(cmd *cobra.Command, _ []string, a *app.App) error {
	items := a.Cart.Items()
	var problem string
	if len(items) > 0 {
		if err := a.Cart.Validate(); err != nil {
			problem = err.Error()
		}
	}
	if outputFormat(cmd) == outputJSON {
		return printJSON(cmd.OutOrStdout(), cartView{
			Items:      items,
			TotalItems: a.Cart.TotalItems(),
			TotalPrice: a.Cart.TotalPrice().StringFixed(2),
			Problem:    problem,
		})
	}
	renderCart(cmd.OutOrStdout(), items, a.Cart.TotalPrice())
	if problem != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cannot check out: "+problem)
	}
	return nil
}
