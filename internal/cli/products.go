package cli

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/domain"
)

type pageFlags struct {
	page, size      int
	sortBy, sortDir string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&f.size, "size", 0, "page size, server default when zero")
	cmd.Flags().StringVar(&f.sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&f.sortDir, "sort-dir", "", "asc or desc")
}

func (f *pageFlags) params() domain.PageParams {
	return domain.PageParams{Page: f.page, Size: f.size, SortBy: f.sortBy, SortDir: f.sortDir}
}

func newProductsCmd() *cobra.Command {
	var (
		pf                 pageFlags
		search, view       string
		minPrice, maxPrice string
	)
	cmd := &cobra.Command{
		Use:   "products [product-id]",
		Short: "Browse the catalog or show one product",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				p, err := a.Client.Product(ctx, args[0])
				if err != nil {
					return err
				}
				if outputFormat(cmd) == outputJSON {
					return printJSON(cmd.OutOrStdout(), p)
				}
				renderProduct(cmd.OutOrStdout(), p)
				return nil
			}

			var (
				page *domain.Page[domain.Product]
				err  error
			)
			params := pf.params()
			switch {
			case search != "":
				page, err = a.Client.SearchProducts(ctx, search, params)
			case minPrice != "" || maxPrice != "":
				var lo, hi decimal.Decimal
				if lo, hi, err = priceRange(minPrice, maxPrice); err == nil {
					page, err = a.Client.ProductsByPriceRange(ctx, lo, hi, params)
				}
			default:
				switch view {
				case "":
					page, err = a.Client.Products(ctx, params)
				case "top-rated":
					page, err = a.Client.TopRatedProducts(ctx, params)
				case "recent":
					page, err = a.Client.RecentProducts(ctx, params)
				case "most-reviewed":
					page, err = a.Client.MostReviewedProducts(ctx, params)
				case "in-stock":
					page, err = a.Client.InStockProducts(ctx, params)
				default:
					err = fmt.Errorf("unknown view %q", view)
				}
			}
			if err != nil {
				return err
			}
			if outputFormat(cmd) == outputJSON {
				return printJSON(cmd.OutOrStdout(), page)
			}
			renderProducts(cmd.OutOrStdout(), page)
			return nil
		}),
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&search, "search", "", "match names and descriptions")
	cmd.Flags().StringVar(&minPrice, "min-price", "", "lower price bound")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "upper price bound")
	cmd.Flags().StringVar(&view, "view", "", "top-rated, recent, most-reviewed or in-stock")
	cmd.MarkFlagsMutuallyExclusive("search", "view")
	return cmd
}

func priceRange(minPrice, maxPrice string) (decimal.Decimal, decimal.Decimal, error) {
	if minPrice == "" || maxPrice == "" {
		return decimal.Zero, decimal.Zero, errors.New("--min-price and --max-price go together")
	}
	lo, err := decimal.NewFromString(minPrice)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("min price: %w", err)
	}
	hi, err := decimal.NewFromString(maxPrice)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("max price: %w", err)
	}
	return lo, hi, nil
}
