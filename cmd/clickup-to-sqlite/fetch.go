package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/config"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/store"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/sync"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/ui"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch DB_PATH",
	Short: "Fetch all ClickUp data into a SQLite database",
	Long: `Fetch all data visible to the access token and upsert it into DB_PATH.

The database is created if needed. Existing rows are replaced by id and
nothing is deleted, so repeated runs keep the database current:
  1. Teams and their members
  2. Spaces of every team
  3. Folders (with their lists) and folderless lists of every space
  4. Tasks of every team, including closed tasks and subtasks
  5. Time entries of every team within --since/--until

Window bounds accept RFC 3339 timestamps, YYYY-MM-DD dates or phrases such
as "3 months ago". Without them the window spans ten years back and ahead.`,
	Example: `  clickup-to-sqlite fetch clickup.db
  CLICKUP_ACCESS_TOKEN=pk_... clickup-to-sqlite fetch clickup.db --since "1 year ago"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := args[0]
		ctx := cmd.Context()

		token, err := resolveToken()
		if err != nil {
			return err
		}

		opts, err := cfg.TimeEntries.Window(time.Now())
		if err != nil {
			return err
		}

		client, err := newClient(token)
		if err != nil {
			return err
		}

		database, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.InitSchema(ctx); err != nil {
			return err
		}

		fmt.Printf("%s Fetching ClickUp data into %s...\n", ui.RenderAccent("→"), dbPath)

		stats, err := sync.New(database, client, logger, opts).Run(ctx)
		if err != nil {
			if stats != nil && len(stats.Rows) > 0 {
				fmt.Printf("%s Partial run, written before the error:\n", ui.RenderWarn("⚠"))
				fmt.Print(ui.KeyValues(rowPairs(stats.Rows)))
			}
			return err
		}

		fmt.Printf("%s Fetch complete in %v\n", ui.RenderPass("✓"), stats.Elapsed.Round(time.Millisecond))
		fmt.Print(ui.KeyValues(rowPairs(stats.Rows)))
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("since", "", "start of the time entry window")
	fetchCmd.Flags().String("until", "", "end of the time entry window")
	fetchCmd.Flags().String("chunk", "", `split the time entry window into requests of this length (e.g. "30d")`)

	_ = v.BindPFlag(config.KeySince, fetchCmd.Flags().Lookup("since"))
	_ = v.BindPFlag(config.KeyUntil, fetchCmd.Flags().Lookup("until"))
	_ = v.BindPFlag(config.KeyChunk, fetchCmd.Flags().Lookup("chunk"))

	rootCmd.AddCommand(fetchCmd)
}

// resolveToken returns the configured token, asking for it on an
// interactive terminal when none is set.
func resolveToken() (string, error) {
	token, err := cfg.Token()
	if err == nil || !errors.Is(err, config.ErrNoToken) {
		return token, err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", goerr.Wrap(err, "pass --access-token or set $"+config.TokenEnv)
	}

	err = huh.NewInput().
		Title("ClickUp access token").
		Description("Create one under Settings > Apps > API Token").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("token is required")
			}
			return nil
		}).
		Value(&token).
		Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// rowPairs orders per-table counts for display.
func rowPairs(rows map[string]int) [][2]string {
	pairs := make([][2]string, 0, len(store.Tables))
	for _, table := range store.Tables {
		pairs = append(pairs, [2]string{table, strconv.Itoa(rows[table])})
	}
	return pairs
}
