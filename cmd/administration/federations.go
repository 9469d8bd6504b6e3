package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/symbiote-h2020/Administration-sub000/internal/config"
	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
	"github.com/symbiote-h2020/Administration-sub000/internal/usecase"
)

var federationsCmd = &cobra.Command{
	Use:   "federations",
	Short: "Inspect stored federations",
}

var federationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored federations",
	RunE: func(cmd *cobra.Command, args []string) error {
		onlyPublic, _ := cmd.Flags().GetBool("public")
		output, _ := cmd.Flags().GetString("output")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log.Init(log.Config{Level: "warn", JSONOutput: cfg.LogJSON, Output: cmd.ErrOrStderr()})

		store, err := openStore(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer store.close()

		svc := usecase.NewFederationService(store.repo, nil, nil)
		feds, err := svc.List(cmd.Context(), onlyPublic)
		if err != nil {
			return err
		}
		return printFederations(cmd, feds, output)
	},
}

func printFederations(cmd *cobra.Command, feds []domain.Federation, output string) error {
	out := cmd.OutOrStdout()
	switch output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(feds)
	case "", "table":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPUBLIC\tMEMBERS\tINVITED\tLAST MODIFIED")
		for _, fed := range feds {
			invited := make([]string, 0, len(fed.OpenInvitations))
			for id := range fed.OpenInvitations {
				invited = append(invited, id)
			}
			sort.Strings(invited)
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\n",
				fed.ID, fed.Name, fed.Public,
				strings.Join(fed.MemberIDs(), ","),
				strings.Join(invited, ","),
				fed.LastModified.Format("2006-01-02T15:04:05Z07:00"),
			)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func init() {
	federationsListCmd.Flags().Bool("public", false, "only list public federations")
	federationsListCmd.Flags().StringP("output", "o", "table", "output format: table or json")
	federationsCmd.AddCommand(federationsListCmd)
}
