// Command reportctl produces portfolio reports from the transaction
// ledger: realized P&L, inflation-adjusted returns, investor score,
// and enriched holdings.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&pnlCmd{}, "reports")
	subcommands.Register(&realReturnsCmd{}, "reports")
	subcommands.Register(&scoreCmd{}, "reports")
	subcommands.Register(&holdingsCmd{}, "reports")
	subcommands.Register(&historyCmd{}, "reports")
	subcommands.Register(&lotsCmd{}, "reports")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
