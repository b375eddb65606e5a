package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storefront-checkout/internal/models"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "storefrontctl",
		Usage: "manage a local cart and check out against the storefront order service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cart-file",
				Usage:   "where the cart is kept",
				Value:   defaultCartFile(),
				EnvVars: []string{"STOREFRONT_CART_FILE"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			cartCommand(),
			couponCommand(),
			checkoutCommand(),
			orderCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultCartFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".storefront", "cart.json")
	}
	return filepath.Join(home, ".storefront", "cart.json")
}

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "show or change the local cart",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the cart",
				Action: cartShow,
			},
			{
				Name:  "add",
				Usage: "add an item; the quantity is added to an existing line with the same id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.Int64Flag{Name: "price", Required: true, Usage: "unit price in minor units"},
					&cli.IntFlag{Name: "qty", Value: 1},
					&cli.StringFlag{Name: "variant"},
					&cli.StringFlag{Name: "image"},
				},
				Action: cartAdd,
			},
			{
				Name:      "update",
				Usage:     "set the quantity of a line; 0 removes it",
				ArgsUsage: "ID QUANTITY",
				Action:    cartUpdate,
			},
			{
				Name:      "remove",
				Usage:     "remove a line",
				ArgsUsage: "ID",
				Action:    cartRemove,
			},
			{
				Name:   "clear",
				Usage:  "empty the cart",
				Action: cartClear,
			},
		},
	}
}

func couponCommand() *cli.Command {
	return &cli.Command{
		Name:  "coupon",
		Usage: "coupon codes",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "evaluate a code against the current cart",
				ArgsUsage: "CODE",
				Action:    couponCheck,
			},
		},
	}
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order for the cart and print the payment page URL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "coupon"},
		},
		Action: checkout,
	}
}

func orderCommand() *cli.Command {
	return &cli.Command{
		Name:  "order",
		Usage: "order tracking",
		Subcommands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "fetch an order's status from the order service",
				ArgsUsage: "ORDER_NUMBER",
				Action:    orderStatus,
			},
			{
				Name:      "stages",
				Usage:     "show how a status maps onto the fulfilment timeline",
				ArgsUsage: "STATUS",
				Action:    orderStages,
			},
		},
	}
}

func formatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

func printCart(c *cli.Context, cart models.Cart, currency string) {
	w := c.App.Writer
	if cart.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	for _, line := range cart.Lines {
		name := line.Name
		if line.Variant != "" {
			name += " (" + line.Variant + ")"
		}
		fmt.Fprintf(w, "%-12s %-30s %3d x %12s = %12s\n",
			line.ID, name, line.Quantity,
			formatMoney(line.UnitPrice, currency),
			formatMoney(line.LineTotal(), currency),
		)
	}
	fmt.Fprintf(w, "%d item(s), subtotal %s\n", cart.TotalItems(), formatMoney(cart.TotalPrice(), currency))
}
