package cmd

import (
	"os"

	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/output"
	"github.com/spf13/cobra"
)

func newUploadCmd(o *rootOptions) *cobra.Command {
	var showProgress bool
	cmd := &cobra.Command{
		Use:   "upload <signed-uri> <file>",
		Short: "Upload a file as a block blob to a signed URI",
		Long: `Upload a file with a single PUT to a pre-signed blob storage URI.

The URI is used as-is: no base URI and no default headers are applied,
since the signature in the URI authorizes the request.

Examples:
  hitclient upload "https://acct.blob.core.windows.net/c/report.pdf?sv=...&sig=..." report.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd); err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return &exitError{code: ExitUsageError, err: err}
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return &exitError{code: ExitUsageError, err: err}
			}

			client, err := o.client()
			if err != nil {
				return err
			}

			var opts []http.CallOption
			if showProgress {
				opts = append(opts, http.WithProgress(progressPrinter(cmd)))
			}

			ctx := cmd.Context()
			resp, err := client.UploadBlob(ctx, args[0], f, info.Size(), opts...).Await(ctx)

			result := &output.Result{Method: "PUT", URL: args[0], Err: err}
			if resp != nil {
				result.Response = &http.Response[[]byte]{
					StatusCode:   resp.StatusCode,
					StatusText:   resp.StatusText,
					ErrorMessage: resp.ErrorMessage,
					ErrorDetails: resp.ErrorDetails,
					ModelState:   resp.ModelState,
					Location:     resp.Location,
					Headers:      resp.Headers,
					Duration:     resp.Duration,
					RequestID:    resp.RequestID,
				}
			}
			o.formatter(cmd.OutOrStdout()).FormatResult(result)

			return exitFor(resp, err)
		},
	}
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Print upload progress to stderr")
	return cmd
}
