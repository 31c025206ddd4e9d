package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/epcdata/epc-client/pkg/bulk"
)

func newFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the bulk dataset files available for download",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			files, err := c.Files(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", f.Name, f.Size)
			}
			return nil
		},
	}
}

func newDownloadCmd() *cobra.Command {
	var (
		dir     string
		extract bool
	)

	cmd := &cobra.Command{
		Use:     "download <file-name>",
		Short:   "Download one bulk dataset ZIP file",
		Example: "  epc download all-domestic-certificates.zip --dir ./data --extract",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			fileURL, err := c.FileURL(cmd.Context(), name)
			if err != nil {
				return err
			}

			creds, err := loadCredentials(cmd)
			if err != nil {
				return err
			}
			downloader, err := bulk.NewDownloader(creds, log.Logger)
			if err != nil {
				return err
			}

			if extract {
				extractDir, err := downloader.DownloadAndExtract(cmd.Context(), fileURL, name, dir)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), extractDir)
				return nil
			}

			dest := filepath.Join(dir, name)
			if err := downloader.Download(cmd.Context(), fileURL, dest); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "directory to download into")
	cmd.Flags().BoolVar(&extract, "extract", false, "extract the archive after download")

	return cmd
}
