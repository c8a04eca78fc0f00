package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

func newCloneCmd(opts *globalOpts) *cobra.Command {
	var outImage string

	cmd := &cobra.Command{
		Use:   "clone <mint>",
		Short: "Fetch the metadata of an existing token",
		Long:  "Fetch name, symbol, description, links and image of an existing token. Requires moralis_api_key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			if _, err := types.ValidatePublicKey("mint", args[0]); err != nil {
				return err
			}

			m, err := deps.newCloner().Clone(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:        %s\n", m.Name)
			fmt.Fprintf(out, "symbol:      %s\n", m.Symbol)
			fmt.Fprintf(out, "description: %s\n", m.Description)
			fmt.Fprintf(out, "twitter:     %s\n", m.Twitter)
			fmt.Fprintf(out, "telegram:    %s\n", m.Telegram)
			fmt.Fprintf(out, "website:     %s\n", m.Website)
			fmt.Fprintf(out, "image url:   %s\n", m.ImageURL)

			if m.Partial() {
				fmt.Fprintf(out, "image:       not downloaded (%v); supply one with --image when launching\n", m.ImageErr)
				return nil
			}
			if outImage == "" {
				fmt.Fprintf(out, "image:       %s (%d bytes)\n", m.Image.Filename, len(m.Image.Data))
				return nil
			}

			if info, err := os.Stat(outImage); err == nil && info.IsDir() {
				outImage = filepath.Join(outImage, m.Image.Filename)
			}
			if err := os.WriteFile(outImage, m.Image.Data, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			fmt.Fprintf(out, "image:       %s\n", outImage)
			return nil
		},
	}

	cmd.Flags().StringVar(&outImage, "out-image", "", "save the downloaded image to this file or directory")
	return cmd
}
