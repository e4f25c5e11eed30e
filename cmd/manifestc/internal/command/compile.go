// Copyright 2025 The CoReason Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CoReason-AI/coreason-manifest-sub002/cmd/manifestc/internal/view"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/pipeline"
)

type CompileOptions struct {
	Path     string
	Root     string
	Loose    bool
	MaxDepth int
}

func NewCompileCommand(cli *CLI) *cobra.Command {
	var opts CompileOptions

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a workflow manifest into a graph snapshot",
		Long: Highlight("manifestc compile -f <file>") + "\n\n" +
			"Compose a manifest and its references into a single document, then\n" +
			"compile it into a validated node/edge graph. Compilation is strict\n" +
			"by default: any structural error fails the build. Pass --loose to\n" +
			"downgrade structural problems to warnings and emit a best-effort\n" +
			"graph for drafting.\n\n" +
			"Examples:\n" +
			"  # Compile a manifest and print the graph\n" +
			"  manifestc compile -f workflow.yaml\n\n" +
			"  # Emit a machine-readable snapshot\n" +
			"  manifestc compile -f workflow.yaml -o json\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunCompile(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "file", "f", "", "Path to the manifest entry file")
	cmd.Flags().StringVar(&opts.Root, "root", "", "Sandbox root directory (defaults to the manifest's directory)")
	cmd.Flags().BoolVar(&opts.Loose, "loose", false, "Report structural errors as warnings instead of failing")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "Maximum composition recursion depth (0 = default)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func RunCompile(ctx context.Context, cli *CLI, opts CompileOptions) error {
	compileView := view.NewCompileView(cli.Viewer)

	root, err := resolveSandboxRoot(opts.Root, opts.Path)
	if err != nil {
		return err
	}
	entry, err := filepath.Abs(opts.Path)
	if err != nil {
		return err
	}
	entry, err = filepath.Rel(root, entry)
	if err != nil {
		return err
	}

	mode := graph.ModeStrict
	if opts.Loose {
		mode = graph.ModeLoose
	}

	res, err := pipeline.ComposeAndCompile(ctx, pipeline.Options{
		Root:     root,
		Entry:    entry,
		Mode:     mode,
		MaxDepth: opts.MaxDepth,
		Logger:   cli.Logger().Logr(),
	})
	if err != nil {
		return fmt.Errorf("failed to compile %q: %w", opts.Path, err)
	}

	compileView.Render(view.CompileResult{
		Entry:       entry,
		Mode:        mode.String(),
		Snapshot:    res.Graph.Snapshot(),
		Diagnostics: res.Diagnostics,
	})
	return nil
}
