package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCertificateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "certificate <record-type> <lmk-key>",
		Short:   "Retrieve one certificate by its LMK key",
		Example: "  epc certificate domestic 1234567890abcdef",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType, err := parseRecordType(args[0])
			if err != nil {
				return err
			}

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			table, err := c.Certificate(cmd.Context(), recordType, args[1])
			if err != nil {
				return err
			}
			return table.WriteCSV(cmd.OutOrStdout())
		},
	}
}

func newRecommendationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recommendations <record-type> <lmk-key>",
		Short:   "Retrieve the improvement recommendations for one certificate",
		Example: "  epc recommendations domestic 1234567890abcdef",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType, err := parseRecordType(args[0])
			if err != nil {
				return err
			}

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			table, err := c.Recommendations(cmd.Context(), recordType, args[1])
			if err != nil {
				return err
			}
			return table.WriteCSV(cmd.OutOrStdout())
		},
	}
}

func newSchemaCmd() *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:     "schema <record-type>",
		Short:   "List the column names served by a register",
		Long:    "Introspects the register's schema from a one-record sample search.",
		Example: "  epc schema domestic --filter local_authority=E09000030",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType, err := parseRecordType(args[0])
			if err != nil {
				return err
			}

			filterMap, err := parseFilters(filters)
			if err != nil {
				return err
			}

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			columns, err := c.Schema(cmd.Context(), recordType, filterMap)
			if err != nil {
				return err
			}
			for _, col := range columns {
				fmt.Fprintln(cmd.OutOrStdout(), col)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "sample search filter as key=value (repeatable)")

	return cmd
}
