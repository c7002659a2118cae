package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CorentinGC/venus-optimizer/internal/aggregator"
	"github.com/CorentinGC/venus-optimizer/internal/chain"
	"github.com/CorentinGC/venus-optimizer/internal/config"
	"github.com/CorentinGC/venus-optimizer/internal/dex/core"
	"github.com/CorentinGC/venus-optimizer/internal/dex/v2"
	"github.com/CorentinGC/venus-optimizer/internal/dex/v3"
	"github.com/CorentinGC/venus-optimizer/internal/metrics"
	"github.com/CorentinGC/venus-optimizer/internal/multicall"
	"github.com/CorentinGC/venus-optimizer/internal/quotefeed"
	"github.com/CorentinGC/venus-optimizer/internal/router"
	"github.com/CorentinGC/venus-optimizer/internal/tokens"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "venus-router",
		Short:         "Best-execution quote router across PancakeSwap V2/V3 and an external aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to yaml config (optional)")
	root.AddCommand(newQuoteCmd(&cfgPath))
	return root
}

func newQuoteCmd(cfgPath *string) *cobra.Command {
	var (
		from, to, amount string
		multiHop         bool
		maxHops          int
		feeTiers         []int
		split            bool
		slippage         float64
		venue            string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Estimate the best achievable output for one conversion",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics.Serve(ctx, cfg.Metrics.ListenAddr, nil, log)

			r, cleanup, err := buildRouter(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			tiers := cfg.DEX.FeeTiers
			if len(feeTiers) > 0 {
				tiers = make([]uint32, 0, len(feeTiers))
				for _, t := range feeTiers {
					tiers = append(tiers, uint32(t))
				}
			}
			res, err := r.Route(ctx, from, to, amount, core.QuoteOptions{
				AllowMultiHop:     multiHop || cfg.Router.AllowMultiHop,
				MaxHops:           pickInt(maxHops, cfg.Router.MaxHops),
				FeeTiers:          tiers,
				AllowSplitRouting: split || cfg.Router.AllowSplitRouting,
				PreferredVenue:    core.VenueID(venue),
				SlippagePercent:   slippage,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source asset symbol")
	cmd.Flags().StringVar(&to, "to", "", "destination asset symbol")
	cmd.Flags().StringVar(&amount, "amount", "", "input amount in human units")
	cmd.Flags().BoolVar(&multiHop, "multi-hop", false, "enumerate multi-hop paths")
	cmd.Flags().IntVar(&maxHops, "max-hops", 0, "hop ceiling, clamped to [2,4]")
	cmd.Flags().IntSliceVar(&feeTiers, "fee-tiers", nil, "fee tiers for concentrated-liquidity venues")
	cmd.Flags().BoolVar(&split, "split", false, "search a two-way split across the top routes")
	cmd.Flags().Float64Var(&slippage, "slippage", 0, "slippage tolerance in percent")
	cmd.Flags().StringVar(&venue, "venue", "", "restrict to one venue (pancake_v2|pancake_v3)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func buildRouter(ctx context.Context, cfg *config.Config, log *zap.Logger) (*router.Router, func(), error) {
	ec, err := chain.NewClient(ctx, cfg.Chain.RPCHTTP, cfg.CallTimeout())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, err)
	}
	cleanup := func() { ec.Close() }

	dir, err := tokens.NewDirectory(ec, cfg.Tokens.Overrides, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var quoters []core.Quoter
	for _, id := range cfg.DEX.Venues {
		switch id {
		case core.VenuePancakeV2:
			q, err := v2.New(ec, common.HexToAddress(cfg.DEX.V2Router), log)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			quoters = append(quoters, q)
		case core.VenuePancakeV3:
			mc, err := multicall.New(ec, common.HexToAddress(cfg.DEX.Multicall))
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			q, err := v3.New(mc, common.HexToAddress(cfg.DEX.V3QuoterV2), log)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			quoters = append(quoters, q)
		default:
			log.Warn("unknown venue in config, skipping", zap.String("venue", string(id)))
		}
	}

	var agg router.AggregatorAPI
	if cfg.Aggregator.BaseURL != "" {
		agg = aggregator.NewClient(cfg.Aggregator.BaseURL, cfg.Aggregator.APIKey, cfg.Aggregator.ChainID, cfg.AggregatorTimeout(), log)
	}

	var feed router.FeedPublisher
	if cfg.Feed.RedisAddr != "" {
		pub := quotefeed.NewPublisher(cfg.Feed.RedisAddr, cfg.Feed.Channel)
		feed = pub
		prev := cleanup
		cleanup = func() {
			_ = pub.Close()
			prev()
		}
	}

	r, err := router.New(router.Deps{
		Log:                 log,
		Directory:           dir,
		Quoters:             quoters,
		Aggregator:          agg,
		GasOracle:           ec,
		Feed:                feed,
		Intermediates:       cfg.Tokens.Intermediates,
		FeeTiers:            cfg.DEX.FeeTiers,
		MaxConcurrentQuotes: cfg.Router.MaxConcurrentQuotes,
		SplitStepPercent:    cfg.Router.SplitStepPercent,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return r, cleanup, nil
}

func pickInt(flag, fallback int) int {
	if flag != 0 {
		return flag
	}
	return fallback
}
