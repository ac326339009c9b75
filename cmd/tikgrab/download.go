package main

import (
	"github.com/spf13/cobra"
)

func newDownloadCmd(e *env, flags *globalFlags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Save the video or every photo of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, e, flags, dir)
			if err != nil {
				return err
			}
			defer rt.app.Close()

			if err := rt.app.HandleSubmit(cmd.Context(), args[0]); err != nil {
				return err
			}
			paths, err := rt.app.HandleDownload(cmd.Context())
			rt.presenter.Saved(paths)
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to save into (default from config)")
	return cmd
}
