package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/config"
	"github.com/investrack/portfolio-service/internal/database"
	"github.com/investrack/portfolio-service/internal/engine"
	"github.com/investrack/portfolio-service/internal/models"
	"github.com/investrack/portfolio-service/internal/quotes"
	"github.com/investrack/portfolio-service/internal/reports"
)

// deps bundles everything a report command needs
type deps struct {
	cfg *config.Config
	db  *database.DB
}

func openDeps() (*deps, error) {
	cfg := config.Load()
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &deps{cfg: cfg, db: db}, nil
}

func (d *deps) close() {
	d.db.Close()
}

// quoteProvider builds the market data provider, wrapping it in the
// Redis cache when the cache is reachable.
func (d *deps) quoteProvider() quotes.Provider {
	client := quotes.NewFinnhubClient(d.cfg.Quotes.FinnhubAPIKey, d.cfg.Quotes.Timeout)

	rdb := redis.NewClient(&redis.Options{
		Addr:     d.cfg.Redis.Addr,
		Password: d.cfg.Redis.Password,
		DB:       d.cfg.Redis.DB,
	})
	return quotes.NewCachedProvider(rdb, client, d.cfg.Quotes.CacheTTL)
}

func printJSON(v interface{}) subcommands.ExitStatus {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(data))
	return subcommands.ExitSuccess
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// flagWasSet reports whether the named flag was passed explicitly, so a
// zero value can be told apart from an omitted flag.
func flagWasSet(f *flag.FlagSet, name string) bool {
	set := false
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// pnlCmd prints the realized profit and loss statement for a user.
type pnlCmd struct {
	user string
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "print the realized profit and loss statement" }
func (*pnlCmd) Usage() string {
	return `reportctl pnl -user <id>

  Prints per-instrument realized P&L computed from the transaction ledger.
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to report on")
}

func (c *pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	d, err := openDeps()
	if err != nil {
		return fail(err)
	}
	defer d.close()

	builder := reports.NewPnLReportBuilder(d.db, 0)
	statement, err := builder.Build(ctx, c.user)
	if err != nil {
		return fail(err)
	}
	return printJSON(statement)
}

// realReturnsCmd prints the inflation-adjusted return report for a user.
type realReturnsCmd struct {
	user      string
	inflation float64
}

func (*realReturnsCmd) Name() string     { return "real-returns" }
func (*realReturnsCmd) Synopsis() string { return "print inflation-adjusted realized returns" }
func (*realReturnsCmd) Usage() string {
	return `reportctl real-returns -user <id> [-inflation <rate>]

  Prints per-instrument realized returns discounted by the annual
  inflation rate over each lot's holding period.
`
}

func (c *realReturnsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to report on")
	f.Float64Var(&c.inflation, "inflation", 0, "Annual inflation rate, 0 allowed (defaults to INFLATION_RATE)")
}

func (c *realReturnsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	d, err := openDeps()
	if err != nil {
		return fail(err)
	}
	defer d.close()

	rate := d.cfg.Reports.InflationRate
	if flagWasSet(f, "inflation") {
		rate = c.inflation
	}

	calc := reports.NewRealReturnCalculator(d.db, rate, 0)
	report, err := calc.Build(ctx, c.user)
	if err != nil {
		return fail(err)
	}
	return printJSON(report)
}

// lotsCmd prints the open FIFO lots a user's ledger implies.
type lotsCmd struct {
	user string
}

type openLotRow struct {
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	AcquiredAt time.Time       `json:"acquired_at"`
}

type openLotsEntry struct {
	Instrument   string          `json:"instrument"`
	OpenQuantity decimal.Decimal `json:"open_quantity"`
	Lots         []openLotRow    `json:"lots"`
	Inconsistent bool            `json:"data_inconsistency,omitempty"`
	UnmatchedQty decimal.Decimal `json:"unmatched_quantity"`
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "print the open acquisition lots per instrument" }
func (*lotsCmd) Usage() string {
	return `reportctl lots -user <id>

  Replays the ledger and prints the lots still open per instrument,
  oldest first.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to report on")
}

func (c *lotsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	d, err := openDeps()
	if err != nil {
		return fail(err)
	}
	defer d.close()

	txs, err := d.db.GetTransactionsByUser(c.user)
	if err != nil {
		return fail(err)
	}

	grouped := models.GroupBySymbol(txs)
	symbols := make([]string, 0, len(grouped))
	for symbol := range grouped {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	entries := make([]openLotsEntry, 0, len(symbols))
	for _, symbol := range symbols {
		open, lotsErr := engine.OpenLots(grouped[symbol])
		entry := openLotsEntry{Instrument: symbol, OpenQuantity: decimal.Zero}
		for _, lot := range open {
			entry.Lots = append(entry.Lots, openLotRow{
				Quantity:   lot.Quantity,
				UnitCost:   lot.UnitCost,
				AcquiredAt: lot.AcquiredAt,
			})
			entry.OpenQuantity = entry.OpenQuantity.Add(lot.Quantity)
		}
		var inconsistency *engine.DataInconsistencyError
		if errors.As(lotsErr, &inconsistency) {
			entry.Inconsistent = true
			entry.UnmatchedQty = inconsistency.Unmatched
		} else if lotsErr != nil {
			return fail(lotsErr)
		}
		entries = append(entries, entry)
	}
	return printJSON(entries)
}

// historyCmd prints a user's most recent transactions.
type historyCmd struct {
	user  string
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the most recent ledger transactions" }
func (*historyCmd) Usage() string {
	return `reportctl history -user <id> [-limit <n>]

  Prints the user's most recent transactions, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to report on")
	f.IntVar(&c.limit, "limit", 20, "Maximum number of transactions")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	d, err := openDeps()
	if err != nil {
		return fail(err)
	}
	defer d.close()

	txs, err := d.db.GetRecentTransactionsByUser(c.user, c.limit)
	if err != nil {
		return fail(err)
	}
	return printJSON(txs)
}

// scoreCmd prints the composite investor score for a user.
type scoreCmd struct {
	user string
}

func (*scoreCmd) Name() string     { return "score" }
func (*scoreCmd) Synopsis() string { return "print the composite investor score" }
func (*scoreCmd) Usage() string {
	return `reportctl score -user <id>

  Prints the investor score with its component breakdown and feedback.
`
}

func (c *scoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to report on")
}

func (c *scoreCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	d, err := openDeps()
	if err != nil {
		return fail(err)
	}
	defer d.close()

	scorer := reports.NewScoreEngine(d.db, d.db, time.Now)
	score, err := scorer.Compute(c.user)
	if err != nil {
		return fail(err)
	}
	return printJSON(score)
}

// holdingsCmd prints a user's holdings enriched with live market values.
type holdingsCmd struct {
	user string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "print holdings enriched with market values" }
func (*holdingsCmd) Usage() string {
	return `reportctl holdings -user <id>

  Prints each holding with its current price, total value, and
  unrealized P&L. Quote failures fall back to cost basis.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to report on")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	d, err := openDeps()
	if err != nil {
		return fail(err)
	}
	defer d.close()

	valuer := reports.NewHoldingsValuer(
		d.db,
		d.quoteProvider(),
		d.cfg.Quotes.Timeout,
		d.cfg.Reports.ValuationWorkers,
		decimal.NewFromFloat(d.cfg.Reports.FDAppreciation),
	)
	enriched, err := valuer.EnrichHoldings(ctx, c.user)
	if err != nil {
		return fail(err)
	}
	return printJSON(enriched)
}
