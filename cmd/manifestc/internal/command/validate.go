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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CoReason-AI/coreason-manifest-sub002/cmd/manifestc/internal/loader"
	"github.com/CoReason-AI/coreason-manifest-sub002/cmd/manifestc/internal/view"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/pipeline"
)

type ValidateOptions struct {
	Path        string
	Root        string
	Strict      bool
	Parallelism int
}

func NewValidateCommand(cli *CLI) *cobra.Command {
	var opts ValidateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate workflow manifests",
		Long: Highlight("manifestc validate -f <path>") + "\n\n" +
			"Validate workflow manifests by file or directory.\n\n" +
			"Each manifest is composed inside its sandbox root and compiled.\n" +
			"By default validation runs in loose mode, reporting structural\n" +
			"problems as warnings; pass --strict to fail on them instead.\n" +
			"When targeting a directory, all .yaml and .yml files are\n" +
			"validated in parallel.\n\n" +
			"Examples:\n" +
			"  # Validate a single manifest in loose mode\n" +
			"  manifestc validate -f workflow.yaml\n\n" +
			"  # Validate all manifests in a directory, strictly\n" +
			"  manifestc validate -f ./manifests --strict\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidate(cmd.Context(), cli, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Path, "file", "f", "", "Path to manifest file or directory")
	cmd.Flags().StringVar(&opts.Root, "root", "", "Sandbox root directory (defaults to the manifest's directory)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Escalate structural warnings to errors")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "Maximum concurrent validations (0 = number of CPUs)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func RunValidate(ctx context.Context, cli *CLI, opts ValidateOptions) error {
	// Always use the configured view for validation results
	validateView := view.NewValidateView(cli.Viewer)

	root, err := resolveSandboxRoot(opts.Root, opts.Path)
	if err != nil {
		return err
	}

	entries, err := loader.CollectManifests(root, opts.Path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no YAML files found in %q", opts.Path)
	}

	mode := graph.ModeLoose
	if opts.Strict {
		mode = graph.ModeStrict
	}

	results := pipeline.RunAll(ctx, root, entries, mode, opts.Parallelism)

	resultView := view.ValidateResult{FileCount: len(entries), Mode: mode.String()}
	for _, result := range results {
		fileResult := view.ValidateFileResult{File: result.Entry}
		if result.Err != nil {
			fileResult.Error = result.Err.Error()
		} else {
			for _, d := range result.Result.Diagnostics {
				fileResult.Warnings = append(fileResult.Warnings, d.String())
			}
		}
		resultView.Files = append(resultView.Files, fileResult)
	}

	validateView.Render(resultView)
	if resultView.HasErrors() {
		return errors.New("")
	}
	return nil
}

// resolveSandboxRoot picks the sandbox root for a validation run: the
// explicit --root when given, the directory itself when path is a
// directory, or the file's parent directory otherwise.
func resolveSandboxRoot(root, path string) (string, error) {
	if root != "" {
		return filepath.Abs(root)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}
	if info.IsDir() {
		return filepath.Abs(path)
	}
	return filepath.Abs(filepath.Dir(path))
}
