package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/order"
)

const timeLayout = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func pageCaption(page, pages int, total int64) string {
	if pages == 0 {
		pages = 1
	}
	return fmt.Sprintf("page %d of %d, %d total", page+1, pages, total)
}

func renderProducts(w io.Writer, p *domain.Page[domain.Product]) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Category", "Price", "Stock", "Rating"})
	for _, pr := range p.Content {
		stock := strconv.Itoa(pr.StockQuantity)
		if pr.StockQuantity <= 0 {
			stock = "out"
		}
		t.AppendRow(table.Row{pr.ID, pr.Name, pr.Category, money(pr.Price), stock, fmt.Sprintf("%.1f (%d)", pr.AverageRating, pr.ReviewCount)})
	}
	t.SetCaption(pageCaption(p.Page, p.TotalPages, p.TotalElements))
	t.Render()
}

func renderProduct(w io.Writer, p *domain.Product) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"ID", p.ID},
		{"Name", p.Name},
		{"Category", p.Category},
		{"Price", money(p.Price)},
		{"Stock", p.StockQuantity},
		{"Rating", fmt.Sprintf("%.1f from %d reviews", p.AverageRating, p.ReviewCount)},
		{"Description", p.Description},
	})
	t.Render()
}

func renderCart(w io.Writer, items []domain.CartItem, total decimal.Decimal) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Qty", "Subtotal", "Stock"})
	units := 0
	for _, it := range items {
		stock := "?"
		if it.StockQuantity != nil {
			stock = strconv.Itoa(*it.StockQuantity)
		}
		if it.ExceedsStock() {
			stock += " (!)"
		}
		units += it.Quantity
		t.AppendRow(table.Row{it.ProductID, it.Name, money(it.Price), it.Quantity, money(it.Subtotal()), stock})
	}
	t.AppendFooter(table.Row{"", "Total", "", units, money(total), ""})
	t.Render()
}

func renderOrders(w io.Writer, p *domain.Page[domain.Order]) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Date", "Customer", "Items", "Total", "Status"})
	for _, o := range p.Content {
		t.AppendRow(table.Row{o.ID, o.OrderDate.Format(timeLayout), o.CustomerName, o.TotalItems(), money(o.TotalAmount), order.Describe(o.Status).Label})
	}
	t.SetCaption(pageCaption(p.Page, p.TotalPages, p.TotalElements))
	t.Render()
}

func renderOrder(w io.Writer, v order.View) {
	o := v.Order
	fmt.Fprintf(w, "Order %s placed %s: %s\n", o.ID, o.OrderDate.Format(timeLayout), v.Status.Label)

	steps := list.NewWriter()
	steps.SetOutputMirror(w)
	for _, s := range v.Timeline {
		mark := "[ ]"
		if s.Completed {
			mark = "[x]"
		}
		label := mark + " " + s.Label
		if s.Current {
			label += " <"
		}
		steps.AppendItem(label)
	}
	steps.Render()

	t := newTable(w)
	t.AppendHeader(table.Row{"Product", "Price", "Qty", "Subtotal"})
	for _, it := range o.OrderItems {
		t.AppendRow(table.Row{it.ProductName, money(it.Price), it.Quantity, money(it.Subtotal)})
	}
	t.AppendFooter(table.Row{"Total", "", o.TotalItems(), money(o.TotalAmount)})
	t.Render()

	fmt.Fprintf(w, "Deliver to: %s (%s)\n", o.DeliveryAddress, o.ContactNumber)
	if v.PaymentLabel != "" {
		fmt.Fprintf(w, "Payment: %s\n", v.PaymentLabel)
	}
	if o.EstimatedDeliveryDate != nil && !order.IsTerminal(o.Status) {
		fmt.Fprintf(w, "Estimated delivery: %s\n", o.EstimatedDeliveryDate.Format("2006-01-02"))
	}
	if o.ActualDeliveryDate != nil {
		fmt.Fprintf(w, "Delivered: %s\n", o.ActualDeliveryDate.Format(timeLayout))
	}
}

func renderStats(w io.Writer, s *domain.OrderStats) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Total orders", s.TotalOrders},
		{"Pending", s.PendingOrders},
		{"Processing", s.ProcessingOrders},
		{"Delivered", s.DeliveredOrders},
		{"Cancelled", s.CancelledOrders},
		{"Revenue", money(s.TotalRevenue)},
	})
	t.Render()
}
