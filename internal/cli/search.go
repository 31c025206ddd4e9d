package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/epcdata/epc-client/pkg/client"
	"github.com/epcdata/epc-client/pkg/pagination"
)

func newSearchCmd() *cobra.Command {
	var (
		filters    []string
		mode       string
		size       int
		maxPages   int
		maxRecords int
		resume     string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "search <record-type>",
		Short: "Search certificates and write the results as CSV",
		Example: `  epc search domestic --filter local_authority=E09000030
  epc search domestic --filter postcode=SW1A --mode all --max-records 500
  epc search non-domestic --filter local_authority=E09000030 --mode manual`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType, err := parseRecordType(args[0])
			if err != nil {
				return err
			}

			filterMap, err := parseFilters(filters)
			if err != nil {
				return err
			}
			if size > 0 {
				filterMap["size"] = fmt.Sprintf("%d", size)
			}

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Search(cmd.Context(), recordType, filterMap, client.SearchOptions{
				Mode:        pagination.Mode(mode),
				MaxPages:    maxPages,
				MaxRecords:  maxRecords,
				ResumeToken: resume,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			if err := result.Records.WriteCSV(out); err != nil {
				return fmt.Errorf("write results: %w", err)
			}

			if result.NextToken != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "resume with: --mode manual --resume %s\n", result.NextToken)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "search filter as key=value (repeatable)")
	cmd.Flags().StringVar(&mode, "mode", string(pagination.ModeNone), "pagination mode: none, manual or all")
	cmd.Flags().IntVar(&size, "size", 0, "records per page (1-5000, default 25)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum pages to fetch (0 = unlimited)")
	cmd.Flags().IntVar(&maxRecords, "max-records", 0, "maximum total records (forces --mode all)")
	cmd.Flags().StringVar(&resume, "resume", "", "continuation token from a previous manual search")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to a file instead of stdout")

	return cmd
}
