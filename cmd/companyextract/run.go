package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jcaMx/company-extractor-web/internal/app"
	"github.com/jcaMx/company-extractor-web/internal/model"
	"github.com/jcaMx/company-extractor-web/internal/render"
)

func newRunCmd(o *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Run the extraction pipeline locally and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "text" && format != "pdf" {
				return fmt.Errorf("unknown format %q (want json, text or pdf)", format)
			}
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			if err := app.ValidateConfig(cfg, true); err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := write(w, format, res); err != nil {
				return err
			}
			if out != "" {
				log.Info().Str("out", out).Str("format", format).Msg("wrote output")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, text or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func write(w io.Writer, format string, res *model.ExtractionResult) error {
	switch format {
	case "text":
		_, err := io.WriteString(w, render.Text(res))
		return err
	case "pdf":
		return render.PDF(w, res)
	default:
		return render.JSON(w, res)
	}
}
