package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/market-portal/internal/checkout"
	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

func newProductsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			products, err := e.ws.Catalog.List(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(products))
			for _, p := range products {
				rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, domain.FormatMoney(p.Price), p.Description})
			}
			return e.out.table(products, []string{"ID", "NAME", "PRICE", "DESCRIPTION"}, rows)
		},
	}
}

func newCartCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if err := e.ws.Cart.Refetch(ctx); err != nil {
				return err
			}
			return e.printCart()
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if err := e.ws.Cart.AddLine(ctx, id, quantity); err != nil {
				return err
			}
			return e.printCart()
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "how many to add")

	set := &cobra.Command{
		Use:   "set LINE_ID QUANTITY",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return apperrors.NewValidationError("quantity must be a number", map[string]any{"quantity": args[1]})
			}
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if err := e.ws.Cart.Load(ctx); err != nil {
				return err
			}
			if err := e.ws.Cart.SetQuantity(ctx, id, q); err != nil {
				return err
			}
			return e.printCart()
		},
	}

	remove := &cobra.Command{
		Use:   "remove LINE_ID",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if err := e.ws.Cart.RemoveLine(ctx, id); err != nil {
				return err
			}
			return e.printCart()
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if err := e.ws.Cart.ClearCart(ctx, yes); err != nil {
				return err
			}
			return e.printCart()
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing the cart")

	cmd.AddCommand(add, set, remove, clearCmd)
	return cmd
}

func (e *env) printCart() error {
	snap := e.ws.Cart.Snapshot()
	agg := snap.Aggregate
	if e.out.json {
		return e.out.value(map[string]any{
			"lines":    snap.Lines,
			"subtotal": domain.FormatMoney(agg.Subtotal),
			"tax":      domain.FormatMoney(agg.Tax),
			"total":    domain.FormatMoney(agg.Total),
		})
	}
	if len(snap.Lines) == 0 {
		return e.out.message("Your cart is empty")
	}
	rows := make([][]string, 0, len(snap.Lines)+3)
	for _, l := range snap.Lines {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.Product.Name,
			domain.FormatMoney(l.Product.Price),
			strconv.Itoa(l.Quantity),
			domain.FormatMoney(l.Subtotal),
		})
	}
	rows = append(rows,
		[]string{"", "", "", "Subtotal", domain.FormatMoney(agg.Subtotal)},
		[]string{"", "", "", "Tax (10%)", domain.FormatMoney(agg.Tax)},
		[]string{"", "", "", "Total", domain.FormatMoney(agg.Total)},
	)
	return e.out.table(nil, []string{"LINE", "PRODUCT", "PRICE", "QTY", "SUBTOTAL"}, rows)
}

func newCheckoutCmd(e *env) *cobra.Command {
	form := checkout.NewForm()
	var billing string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the whole cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if billing != "" {
				form.BillingAddress = billing
				form.SameAsShipping = false
			}
			if err := e.ws.Cart.Load(ctx); err != nil {
				return err
			}
			outcome, err := e.ws.Checkout.Submit(ctx, form)
			if err != nil {
				return err
			}
			if e.out.json {
				return e.out.value(outcome.Order)
			}
			return e.out.message("Order #%d placed: total %s, status %s",
				outcome.Order.ID, domain.FormatMoney(outcome.Order.Total), outcome.Order.Status)
		},
	}
	cmd.Flags().StringVar(&form.ShippingAddress, "shipping", "", "shipping address")
	cmd.Flags().StringVar(&billing, "billing", "", "billing address (defaults to shipping)")
	cmd.Flags().StringVar(&form.PaymentMethod, "payment", form.PaymentMethod, "payment method")
	return cmd
}

func newOrdersCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "orders [ORDER_ID]",
		Short: "List your orders or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				order, err := e.ws.Orders.Get(ctx, id)
				if err != nil {
					return err
				}
				return e.printOrders([]domain.Order{*order}, order)
			}
			orders, err := e.ws.Orders.Mine(ctx)
			if err != nil {
				return err
			}
			return e.printOrders(orders, orders)
		},
	}
}

func (e *env) printOrders(orders []domain.Order, raw any) error {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		created := ""
		if !o.CreatedAt.IsZero() {
			created = o.CreatedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			string(o.Status),
			strconv.Itoa(len(o.Lines)),
			domain.FormatMoney(o.Total),
			created,
		})
	}
	return e.out.table(raw, []string{"ID", "STATUS", "ITEMS", "TOTAL", "CREATED"}, rows)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}
