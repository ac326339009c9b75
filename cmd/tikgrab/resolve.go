package main

import (
	"errors"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/iconidentify/tikgrab/internal/app"
)

func newResolveCmd(e *env, flags *globalFlags) *cobra.Command {
	var copyLink bool

	cmd := &cobra.Command{
		Use:   "resolve <url>...",
		Short: "Print direct media URLs for one or more links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd, e, flags, "")
			if err != nil {
				return err
			}
			defer rt.app.Close()

			var errs []error
			for _, raw := range lo.Uniq(args) {
				if err := rt.app.HandleSubmit(cmd.Context(), raw); err != nil {
					errs = append(errs, err)
					continue
				}
				if copyLink {
					if err := rt.app.HandleCopy(); err != nil && !errors.Is(err, app.ErrNothingSelected) {
						errs = append(errs, err)
					}
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&copyLink, "copy", false, "Copy the video link to the clipboard")
	return cmd
}
