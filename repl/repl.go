// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/torokati44/binaryen/grammar"
	"github.com/torokati44/binaryen/internal/errors"
	"github.com/torokati44/binaryen/internal/ir"
	"github.com/torokati44/binaryen/internal/passes"
	"github.com/torokati44/binaryen/internal/wat"
)

const PROMPT = ">> "

// Start reads one function or module per line from in, runs pipeline on it
// and writes the optimized text to out. It returns when in is exhausted or
// ctx is cancelled.
func Start(ctx context.Context, in io.Reader, out io.Writer, pipeline *passes.Pipeline) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := evaluate(ctx, line, out, pipeline); err != nil {
			return err
		}
	}
}

func evaluate(ctx context.Context, line string, out io.Writer, pipeline *passes.Pipeline) error {
	module, diags, err := wat.LoadString("repl", line)
	if err != nil {
		fmt.Fprint(out, grammar.FormatParseError(line, err))
		return nil
	}
	if len(diags) > 0 {
		fmt.Fprint(out, errors.NewErrorReporter("repl", line).FormatErrors(diags))
		if errors.HasErrors(diags) {
			return nil
		}
	}

	stats, err := pipeline.Run(ctx, module)
	if err != nil {
		return err
	}

	for _, fn := range module.Functions {
		fmt.Fprint(out, ir.PrintFunction(fn))
	}
	for _, s := range stats {
		if s.Merges > 0 {
			fmt.Fprintf(out, ";; %s: %d merges\n", s.Pass, s.Merges)
		}
	}
	return nil
}
