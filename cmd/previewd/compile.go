package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"livepreview/internal/compiler"
	"livepreview/internal/gateway/service/workspace"
	"livepreview/internal/vfs"
)

func newCompileCmd() *cobra.Command {
	var (
		prefix    string
		sourceMap bool
	)
	cmd := &cobra.Command{
		Use:   "compile <dir> <file>",
		Short: "Print the browser module produced for one workspace file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, args[0])
			if err != nil {
				return err
			}
			f, ok := store.FindLoose(args[1])
			if !ok {
				return fmt.Errorf("module not found: %s", args[1])
			}

			opts := compiler.DefaultOptions()
			opts.Prefix = prefix
			opts.InlineSourceMap = sourceMap
			opts.CacheSize = 0
			comp, err := compiler.New(opts)
			if err != nil {
				return err
			}
			resolved := store.ResolveImports(f.Path)
			out, err := comp.Compile(f.Path, f.Content, func(spec string) (string, bool) {
				p, ok := resolved[spec]
				return p, ok
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "prefix for rewritten workspace imports, e.g. /preview")
	cmd.Flags().BoolVar(&sourceMap, "sourcemap", false, "append an inline source map")
	return cmd
}

func loadStore(cmd *cobra.Command, dir string) (*vfs.Store, error) {
	files, err := workspace.LoadDir(cmd.Context(), dir)
	if err != nil {
		return nil, err
	}
	store := vfs.NewStore()
	store.SetAll(files)
	return store, nil
}
