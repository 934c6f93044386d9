package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/store"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status DB_PATH",
	Short: "Show what a database holds",
	Long: `Display the current state of a database written by fetch.

Shows:
  - File location, size and modification time
  - Number of rows per table
  - Number of declared foreign keys`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := args[0]
		ctx := cmd.Context()

		info, err := os.Stat(dbPath)
		if os.IsNotExist(err) {
			fmt.Printf("\n%s No database at %s\n", ui.RenderWarn("⚠"), dbPath)
			fmt.Printf("   Run 'clickup-to-sqlite fetch %s' to create it\n\n", dbPath)
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to stat database", goerr.V("path", dbPath))
		}

		database, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		counts, err := database.Counts(ctx)
		if err != nil {
			return err
		}
		fks, err := database.ForeignKeys(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s Database Status\n\n", ui.RenderAccent("📊"))
		fmt.Print(ui.KeyValues([][2]string{
			{"Location", dbPath},
			{"Size", formatSize(info.Size())},
			{"Modified", info.ModTime().Format("2006-01-02 15:04:05")},
			{"Foreign keys", strconv.Itoa(len(fks))},
		}))
		fmt.Printf("\n%s\n", ui.RenderMuted("Rows"))
		fmt.Print(ui.KeyValues(rowPairs(counts)))
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%d bytes", size)
}
