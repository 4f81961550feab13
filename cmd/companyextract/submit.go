package main

import (
	"errors"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/jcaMx/company-extractor-web/internal/client"
	"github.com/jcaMx/company-extractor-web/internal/form"
	"github.com/jcaMx/company-extractor-web/internal/render"
)

func newSubmitCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <url>",
		Short: "Submit a company URL to a running API and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
			sp.Suffix = " Extracting..."

			state := form.New()
			state.OnChange = func(s form.Snapshot) {
				if s.Loading {
					sp.Start()
				} else {
					sp.Stop()
				}
			}
			state.SetURL(args[0])

			snap, err := state.Submit(cmd.Context(), client.New(cfg.APIURL))
			if errors.Is(err, form.ErrEmptyURL) {
				return err
			}
			if snap.HasError() {
				return errors.New(snap.ErrorText())
			}
			return render.Terminal(cmd.OutOrStdout(), snap.Result)
		},
	}
}
