// Command fetch runs one stock service operation against the configured
// upstreams and store and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"stockservice/internal/app"
	"stockservice/internal/config"
	"stockservice/internal/logging"
	"stockservice/internal/stock"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	configPath string
	timeout    time.Duration
	app        *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "fetch",
		Short:        "Query quotes, profiles and stock records from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, logging.NewCLILogger(app.LogConfig(cfg.Log)))
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config.yaml (optional, CONFIG_FILE)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(c.newQuoteCmd(), c.newProfileCmd(), c.newStockCmd(), c.newPurchaseCmd())
	return root
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *cli) newQuoteCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "quote SYMBOL",
		Short:   "Fetch the open/close quote of a symbol",
		Example: "  fetch quote AAPL --date 2024-11-27",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d stock.Date
			if date != "" {
				parsed, err := stock.ParseDate(date)
				if err != nil {
					return stock.NewValidationError("date", date, "must be YYYY-MM-DD")
				}
				d = parsed
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			q, err := c.app.Service.FetchQuote(ctx, args[0], d)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "trading day (YYYY-MM-DD), defaults to the previous weekday")
	return cmd
}

func (c *cli) newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile SYMBOL",
		Short: "Scrape the company profile of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			p, err := c.app.Service.FetchProfile(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func (c *cli) newStockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stock SYMBOL",
		Short: "Build the merged stock record of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			rec, err := c.app.Service.GetStockRecord(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func (c *cli) newPurchaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "purchase SYMBOL AMOUNT",
		Short:   "Add a purchased amount to the stored total of a symbol",
		Example: "  fetch purchase AAPL 2.5",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return stock.NewValidationError("amount", args[1], "must be a decimal number")
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			total, err := c.app.Service.RecordPurchase(ctx, args[0], amount)
			if err != nil {
				return err
			}
			sym, _ := stock.NormalizeSymbol(args[0])
			return printJSON(cmd.OutOrStdout(), stock.Purchase{Symbol: sym, Amount: total})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
