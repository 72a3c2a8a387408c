package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"livepreview/internal/importmap"
)

func newImportMapCmd() *cobra.Command {
	var opts importmap.Options
	cmd := &cobra.Command{
		Use:   "importmap <dir>",
		Short: "Print the import map for a workspace's package.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, args[0])
			if err != nil {
				return err
			}
			var raw []byte
			if f, ok := store.Get(importmap.ManifestPath); ok {
				raw = []byte(f.Content)
			}
			m := importmap.NewBuilder(opts).BuildFromManifest(raw)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
	cmd.Flags().StringVar(&opts.CDN, "cdn", importmap.DefaultCDN, "CDN base URL")
	cmd.Flags().StringVar(&opts.ReactVersion, "react-version", importmap.DefaultReactVersion, "pinned react and react-dom version")
	return cmd
}
