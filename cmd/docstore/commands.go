/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/pagination"
	"github.com/suparena/docstore/processor"
)

func (cli *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := docstore.GetVersionInfo()
			return cli.render(cmd.OutOrStdout(), info, func(w io.Writer) error {
				fmt.Fprintf(w, "docstore version %s\n", info.Version)
				fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
				fmt.Fprintf(w, "Build date: %s\n", info.BuildDate)
				fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
				return nil
			})
		},
	}
}

func (cli *CLI) keyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Encode and decode tenant keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <id>",
		Short: "Fold the tenant into a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant := cli.tenant()
			if err := keys.ValidateTenant(tenant); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), keys.Encode(tenant, args[0]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <key>",
		Short: "Strip the tenant from a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), keys.Decode(cli.tenant(), args[0]))
			return nil
		},
	})

	return cmd
}

func (cli *CLI) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Check and apply schema documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file.yaml|file.json>",
		Short: "Validate a schema document offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := processor.Load(args[0])
			if err != nil {
				return err
			}
			report := processor.Check(doc)
			out := cmd.OutOrStdout()
			if report.Valid() {
				fmt.Fprintf(out, "%s: ok (%d definitions, %d classifications)\n",
					args[0], len(doc.Definitions), len(doc.Classifications))
				return nil
			}
			for _, line := range report.Lines() {
				fmt.Fprintln(out, line)
			}
			return fmt.Errorf("%s: %d problem(s) found", args[0], len(report.Lines()))
		},
	})

	apply := &cobra.Command{
		Use:   "apply <file.yaml|file.json>",
		Short: "Check a schema document and write it to the tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := processor.Load(args[0])
			if err != nil {
				return err
			}
			if report := processor.Check(doc); !report.Valid() {
				return fmt.Errorf("%s is invalid:\n  %s", args[0], strings.Join(report.Lines(), "\n  "))
			}

			store, err := cli.openStore(cmd.Context())
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			res, err := processor.Apply(cmd.Context(), store.Logger(), doc, cli.tenant(), user, store.Attributes, store.Schemas)
			if err != nil {
				return err
			}
			return cli.render(cmd.OutOrStdout(), res, func(w io.Writer) error {
				fmt.Fprintf(w, "attributes: %d created, %d existing\n", res.Created, res.Existing)
				fmt.Fprintf(w, "sites schema: %t\n", res.Sites)
				fmt.Fprintf(w, "classifications: %s\n", strings.Join(res.Classifications, ", "))
				return nil
			})
		},
	}
	apply.Flags().String("user", "docstore-cli", "user id recorded on written schemas")
	cmd.AddCommand(apply)

	return cmd
}

func (cli *CLI) attributesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attributes",
		Short: "Inspect attribute definitions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the tenant's attribute definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cli.openStore(cmd.Context())
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			next, _ := cmd.Flags().GetString("next")
			previous, _ := cmd.Flags().GetString("previous")
			page, err := store.Attributes.Find(cmd.Context(), cli.tenant(), pagination.Request{
				Next:     next,
				Previous: previous,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			return cli.render(cmd.OutOrStdout(), page, func(w io.Writer) error {
				table := tablewriter.NewWriter(w)
				table.SetHeader([]string{"Key", "Data Type", "Type", "Watermark"})
				for _, a := range page.Items {
					table.Append([]string{a.Key, string(a.DataType), string(a.Type), strconv.FormatBool(a.Watermark() != nil)})
				}
				table.Render()
				if page.Previous != "" {
					fmt.Fprintf(w, "previous: %s\n", page.Previous)
				}
				if page.Next != "" {
					fmt.Fprintf(w, "next: %s\n", page.Next)
				}
				return nil
			})
		},
	}
	list.Flags().Int("limit", 0, "page size")
	list.Flags().String("next", "", "token of the page to read")
	list.Flags().String("previous", "", "token to page back from")
	cmd.AddCommand(list)

	return cmd
}

func (cli *CLI) partitionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Read raw partitions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dump <partition>",
		Short: "Print every record of a partition, e.g. docs#<id> or schemas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cli.openStore(cmd.Context())
			if err != nil {
				return err
			}

			var entries []docstore.Entry
			err = store.Partition(cmd.Context(), cli.tenant(), args[0], func(e docstore.Entry) error {
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
			return cli.renderEntries(cmd.OutOrStdout(), entries)
		},
	})

	return cmd
}

type entryView struct {
	Kind   string `json:"kind" yaml:"kind"`
	SK     string `json:"sk" yaml:"sk"`
	Record any    `json:"record,omitempty" yaml:"record,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (cli *CLI) renderEntries(out io.Writer, entries []docstore.Entry) error {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		v := entryView{Kind: e.Kind, SK: e.SK, Record: e.Record}
		if e.Err != nil {
			v.Kind = "unknown"
			v.Error = e.Err.Error()
		}
		views = append(views, v)
	}

	return cli.render(out, views, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Kind", "Sort Key"})
		for _, v := range views {
			table.Append([]string{v.Kind, v.SK})
		}
		table.Render()
		fmt.Fprintf(w, "%d record(s)\n", len(views))
		return nil
	})
}
