package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"storefront-checkout/configs"
	"storefront-checkout/internal/clients"
	"storefront-checkout/internal/models"
	"storefront-checkout/internal/repositories"
	"storefront-checkout/internal/services"
	"storefront-checkout/pkg/logger"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// env is what every command needs: config, a logger and the local cart.
type env struct {
	config *configs.Config
	log    *zap.Logger
	cart   *services.CartStore
}

func newEnv(c *cli.Context) (*env, error) {
	config := configs.LoadConfig()
	log := logger.NewCLI(c.Bool("verbose"))

	path := c.String("cart-file")
	storage, err := repositories.NewFileCartStorage(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	key := strings.TrimSuffix(filepath.Base(path), ".json")

	return &env{
		config: config,
		log:    log,
		cart:   services.NewCartStore(storage, key, log),
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

func cartShow(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	printCart(c, e.cart.Cart(c.Context), e.config.Storefront.Currency)
	return nil
}

func cartAdd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	if c.Int64("price") < 0 {
		return errors.New("price must not be negative")
	}

	e.cart.AddItem(c.Context, models.CartLine{
		ID:        models.ProductID(c.String("id")),
		Name:      c.String("name"),
		UnitPrice: c.Int64("price"),
		Variant:   c.String("variant"),
		Image:     c.String("image"),
		Quantity:  c.Int("qty"),
	})
	printCart(c, e.cart.Cart(c.Context), e.config.Storefront.Currency)
	return nil
}

func cartUpdate(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: storefrontctl cart update ID QUANTITY", 2)
	}
	quantity, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid quantity %q", c.Args().Get(1))
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	e.cart.UpdateQuantity(c.Context, models.ProductID(c.Args().Get(0)), quantity)
	printCart(c, e.cart.Cart(c.Context), e.config.Storefront.Currency)
	return nil
}

func cartRemove(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: storefrontctl cart remove ID", 2)
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	e.cart.RemoveItem(c.Context, models.ProductID(c.Args().First()))
	printCart(c, e.cart.Cart(c.Context), e.config.Storefront.Currency)
	return nil
}

func cartClear(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	e.cart.Clear(c.Context)
	fmt.Fprintln(c.App.Writer, "Cart cleared")
	return nil
}

func couponCheck(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: storefrontctl coupon check CODE", 2)
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	engine := services.NewDiscountEngine(services.DefaultCoupons())
	subtotal := e.cart.TotalPrice(c.Context)
	result := engine.Evaluate(c.Args().First(), subtotal)

	currency := e.config.Storefront.Currency
	w := c.App.Writer
	switch {
	case result.Accepted:
		fmt.Fprintf(w, "%s: %s off (%s)\n", result.Code, formatMoney(result.Amount, currency), result.Description)
		fmt.Fprintf(w, "New total: %s\n", formatMoney(max0(subtotal-result.Amount), currency))
	case result.Reason == models.RejectMinimumNotMet:
		fmt.Fprintf(w, "%s needs a subtotal of at least %s (cart: %s)\n",
			result.Code, formatMoney(result.MinimumAmount, currency), formatMoney(subtotal, currency))
	case result.Reason == models.RejectBlankCode:
		fmt.Fprintln(w, "Please enter a coupon code")
	default:
		fmt.Fprintf(w, "%s is not a valid coupon code\n", result.Code)
	}
	return nil
}

func checkout(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	lines := e.cart.Lines(c.Context)

	var discount *models.AppliedDiscount
	if code := c.String("coupon"); code != "" {
		engine := services.NewDiscountEngine(services.DefaultCoupons())
		discount, _, err = engine.Apply(code, models.Cart{Lines: lines}.TotalPrice())
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	payments, err := clients.NewPaymentSessionClient(e.config.Payment)
	if err != nil {
		return err
	}
	orders := clients.NewOrderClient(e.config.OrderService.BaseURL, e.config.OrderService.APIKey, e.config.OrderService.Timeout)

	orchestrator := services.NewCheckoutOrchestrator(orders, payments, nil, services.CheckoutConfig{
		SessionID:  "cli:" + e.cart.Key(),
		SuccessURL: e.config.Storefront.SuccessURL(),
		CancelURL:  e.config.Storefront.CancelURL(),
		Currency:   e.config.Storefront.Currency,
	}, e.log)

	w := c.App.Writer
	result, err := orchestrator.Submit(c.Context, lines, models.Customer{
		Name:  c.String("name"),
		Email: c.String("email"),
		Phone: c.String("phone"),
	}, discount, services.CheckoutHooks{
		OnSuccess: func(ctx context.Context, orderNumber string) {
			e.cart.Clear(ctx)
			fmt.Fprintf(w, "Order %s placed\n", orderNumber)
		},
		Navigate: func(_ context.Context, redirectURL string) {
			fmt.Fprintf(w, "Complete your payment at:\n  %s\n", redirectURL)
		},
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	e.log.Debug("Checkout finished", zap.String("order_number", result.OrderNumber))
	return nil
}

func orderStatus(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: storefrontctl order status ORDER_NUMBER", 2)
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	orders := clients.NewOrderClient(e.config.OrderService.BaseURL, e.config.OrderService.APIKey, e.config.OrderService.Timeout)
	tracking := services.NewOrderTrackingService(orders, nil, e.log)

	tracked, err := tracking.Track(c.Context, c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(c.App.Writer, "Order %s\n", tracked.OrderNumber)
	printProgress(c, tracked.Progress)
	return nil
}

func orderStages(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: storefrontctl order stages STATUS", 2)
	}

	status, err := models.ParseOrderStatus(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	printProgress(c, services.TrackOrderStatus(status))
	return nil
}

func printProgress(c *cli.Context, progress services.OrderProgress) {
	w := c.App.Writer
	fmt.Fprintf(w, "Status: %s\n", progress.Status)
	if progress.Cancelled {
		fmt.Fprintln(w, "This order was cancelled")
		return
	}

	for _, stage := range progress.Stages {
		mark := "[ ]"
		if stage.Completed {
			mark = "[x]"
		}
		if stage.Current {
			mark += " <"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, stage.Label)
	}
	if ratio, ok := progress.CompletionRatio(); ok {
		fmt.Fprintf(w, "Progress: %.0f%%\n", ratio*100)
	}
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
