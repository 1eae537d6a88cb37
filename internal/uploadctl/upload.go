package uploadctl

import (
	"fmt"

	"github.com/dmitrijs2005/mediaupload/internal/client"
	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var (
		server      string
		token       string
		contentType string
		partSizeMiB int64
	)

	cmd := &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload local files through the API",
		Long:  "Initiates each upload, sends the bytes to the pre-signed URL (or part URLs for multipart uploads) and completes multipart uploads.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := client.NewUploader(client.NewAPIClient(server, token), partSizeMiB*common.MiB)

			for _, path := range args {
				res, err := u.UploadFile(cmd.Context(), path, contentType)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				mode := "single"
				if res.Multipart {
					mode = "multipart"
				}
				printf(cmd, "%s\t%s\t%s\t%d part(s)\t%s\n", path, res.UploadID, mode, res.Parts, res.ObjectKey)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "Upload API base URL")
	cmd.Flags().StringVarP(&token, "token", "t", "", "API bearer token")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type (detected from the file when empty)")
	cmd.Flags().Int64Var(&partSizeMiB, "part-size", 8, "Multipart part size in MiB")

	return cmd
}
