package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/litedb"
)

// ErrVerify is returned by the verify command when damage was found.
var ErrVerify = errors.New("verification failed")

type tableRow struct {
	Dir   string `json:"dir"`
	Type  string `json:"type"`
	Size  int    `json:"size"`
	Free  int    `json:"free"`
	Pages int    `json:"pages"`
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables [dir]",
		Short: "List the tables of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := logger()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, args[0])
			if err != nil {
				return err
			}
			db, err := litedb.OpenStore(ctx, store, litedb.WithLogger(l))
			if err != nil {
				return err
			}

			rows := []tableRow{}
			for _, ti := range db.Tables() {
				r, err := litedb.Inspect(ctx, store.Sub(ti.Dir))
				if err != nil {
					return fmt.Errorf("table %s: %w", ti.Dir, err)
				}
				rows = append(rows, tableRow{Dir: ti.Dir, Type: ti.Type, Size: ti.Size, Free: ti.Free, Pages: r.Pages})
			}

			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DIR\tTYPE\tSIZE\tFREE\tPAGES")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.Dir, r.Type, r.Size, r.Free, r.Pages)
			}
			return w.Flush()
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [table-dir]",
		Short: "Show the info and indexes of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, args[0])
			if err != nil {
				return err
			}
			r, err := litedb.Inspect(ctx, store)
			if err != nil {
				return err
			}

			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), r)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "type:\t%s\n", r.Type)
			fmt.Fprintf(w, "size:\t%d\n", r.Size)
			fmt.Fprintf(w, "free:\t%d\n", r.Free)
			fmt.Fprintf(w, "pages:\t%d\n", r.Pages)
			fmt.Fprintf(w, "page size:\t%d\n", r.PageSize)
			fmt.Fprintf(w, "page cache:\t%d\n", r.PageCache)
			fmt.Fprintf(w, "compression:\t%s\n", r.Compression)
			fmt.Fprintf(w, "codec:\t%s\n", r.Codec)
			fmt.Fprintf(w, "blacklist:\t%s\n", strings.Join(r.Blacklist, ", "))
			fmt.Fprintln(w)
			fmt.Fprintln(w, "INDEX\tKIND\tDISTINCT\tNULLS")
			for _, ix := range r.Indexes {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", ix.Name, ix.Kind, ix.Distinct, ix.Nulls)
			}
			return w.Flush()
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [table-dir]",
		Short: "Check the page checksums of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, args[0])
			if err != nil {
				return err
			}
			r, err := litedb.Verify(ctx, store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if viper.GetBool("json") {
				if err := printJSON(out, r); err != nil {
					return err
				}
			} else {
				for _, p := range r.Problems {
					if p.Page < 0 {
						fmt.Fprintf(out, "table: %s\n", p.Reason)
						continue
					}
					fmt.Fprintf(out, "page %d: %s\n", p.Page, p.Reason)
				}
				fmt.Fprintf(out, "%d pages, %d records, %d problems\n", r.Pages, r.Records, len(r.Problems))
			}
			if !r.OK() {
				return fmt.Errorf("%w: %d problems", ErrVerify, len(r.Problems))
			}
			return nil
		},
	}
}
