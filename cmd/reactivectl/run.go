package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/devtools"
	"github.com/vango-dev/reactive/pkg/document"
	"github.com/vango-dev/reactive/pkg/watch"
)

type runOptions struct {
	script  string
	watches []string
	deep    bool
	output  string
}

func runCmd(configDir *string) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <document>",
		Short: "Apply a mutation script to a document",
		Long: `Load a document as root state, watch the given paths and apply a
mutation script. After each mutation the watched paths that fired
are printed with their old and new values.

Scripts are JSON or YAML lists, or TOML files of [[mutation]] tables:

  - op: set
    path: todos.0.done
    value: true
  - op: push
    path: todos
    items: [{title: ship it}]

Examples:
  reactivectl run state.json --script steps.yaml --watch todos --deep
  reactivectl run state.yaml -s steps.json -w user.name -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *configDir, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "Mutation script (.json, .yaml or .toml)")
	cmd.Flags().StringArrayVarP(&opts.watches, "watch", "w", nil, "Path to watch (repeatable)")
	cmd.Flags().BoolVar(&opts.deep, "deep", false, "Watch nested changes below each path")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Print the final document as json, yaml or toml")
	cmd.MarkFlagRequired("script")

	return cmd
}

func runScript(ctx context.Context, out, errOut io.Writer, configDir, docPath string, opts runOptions) error {
	sess, err := newSession(configDir, errOut)
	if err != nil {
		return err
	}

	script, err := loadScript(opts.script)
	if err != nil {
		return err
	}
	root, err := sess.load(ctx, docPath)
	if err != nil {
		return err
	}
	sess.tracer.ObserveRoot(ctx, root)
	if len(opts.watches) == 0 {
		warn(out, "no --watch paths; only mutation results are shown")
	}

	var fired []string
	var watchOpts []watch.Option
	if opts.deep {
		watchOpts = append(watchOpts, watch.Deep())
	}
	for _, path := range opts.watches {
		if _, err := document.Resolve(root, path); err != nil {
			return err
		}
		w := watch.New(sess.rt, func() any {
			v, _ := document.Resolve(root, path)
			return v
		}, func(newVal, oldVal any) {
			fired = append(fired, fmt.Sprintf("%s: %s → %s", displayPath(path), sess.show(oldVal), sess.show(newVal)))
		}, watchOpts...)
		defer w.Teardown()
	}

	for i, m := range script {
		fired = fired[:0]
		result, err := devtools.Apply(ctx, sess.tracer, root, m)
		if err != nil {
			return fmt.Errorf("mutation %d: %w", i+1, err)
		}

		success(out, "%s %s%s", m.Op, displayPath(m.Path), resultSuffix(m.Op, sess.show(result)))
		if len(opts.watches) > 0 && len(fired) == 0 {
			info(out, "no watchers fired")
		}
		for _, line := range fired {
			info(out, "→ %s", line)
		}
	}

	if opts.output == "" {
		return nil
	}
	format, err := document.ParseFormat(opts.output)
	if err != nil {
		return err
	}
	var data []byte
	sess.rt.Untracked(func() {
		data, err = document.Encode(root, format)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	_, err = out.Write(data)
	return err
}

func loadScript(path string) ([]devtools.Mutation, error) {
	format, err := document.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X404").WithDetail("script: " + err.Error()).Wrap(err)
	}
	return devtools.ParseScript(data, format)
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

func resultSuffix(op, result string) string {
	switch op {
	case devtools.OpDel, devtools.OpSort, devtools.OpReverse:
		return ""
	}
	return " = " + result
}
