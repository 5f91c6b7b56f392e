package passes

import (
	"context"
	"fmt"
	"runtime"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/torokati44/binaryen/internal/ir"
)

var log = commonlog.GetLogger("bulkmem.passes")

// Pipeline manages the sequence of passes
type Pipeline struct {
	passes  []Pass
	workers int
}

// NewPipeline creates a pipeline running passes in order. workers bounds
// the number of functions processed at once; zero or less means GOMAXPROCS.
func NewPipeline(workers int, passes ...Pass) *Pipeline {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{passes: passes, workers: workers}
}

// NewPipelineFromNames builds a pipeline from registered pass names
func NewPipelineFromNames(names []string, workers int, opts Options) (*Pipeline, error) {
	passes, err := Create(names, opts)
	if err != nil {
		return nil, err
	}
	return NewPipeline(workers, passes...), nil
}

// AddPass adds a pass to the end of the pipeline
func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Passes returns the passes in execution order
func (p *Pipeline) Passes() []Pass {
	return p.passes
}

// Run executes all passes on module. It stops at the first pass that fails
// or when ctx is cancelled, returning the stats gathered so far.
func (p *Pipeline) Run(ctx context.Context, module *ir.Module) ([]Stats, error) {
	log.Infof("running %d passes on %d functions", len(p.passes), len(module.Functions))

	stats := make([]Stats, 0, len(p.passes))
	for _, pass := range p.passes {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		s, err := p.runPass(ctx, pass, module)
		if err != nil {
			return stats, fmt.Errorf("pass %s: %w", pass.Name(), err)
		}
		if s.Changed {
			log.Infof("%s: changed (%d merges)", pass.Name(), s.Merges)
		} else {
			log.Debugf("%s: no changes needed", pass.Name())
		}
		stats = append(stats, s)
	}

	return stats, nil
}

func (p *Pipeline) runPass(ctx context.Context, pass Pass, module *ir.Module) (Stats, error) {
	stats := Stats{Pass: pass.Name()}

	switch pass := pass.(type) {
	case ModulePass:
		stats.Changed = pass.Apply(module)
		stats.Merges = merges(pass)
	case FunctionPass:
		if pass.IsFunctionParallel() {
			return p.runFunctionParallel(ctx, pass, module)
		}
		for _, fn := range module.Functions {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if pass.RunOnFunction(module, fn) {
				stats.Changed = true
			}
		}
		stats.Merges = merges(pass)
	default:
		return stats, fmt.Errorf("%T implements neither ModulePass nor FunctionPass", pass)
	}

	return stats, nil
}

// runFunctionParallel gives each function its own pass instance
func (p *Pipeline) runFunctionParallel(ctx context.Context, pass FunctionPass, module *ir.Module) (Stats, error) {
	instances := make([]FunctionPass, len(module.Functions))
	changed := make([]bool, len(module.Functions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, fn := range module.Functions {
		instances[i] = pass.Create()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log.Debugf("%s: %s", pass.Name(), fn.Name)
			changed[i] = instances[i].RunOnFunction(module, fn)
			return nil
		})
	}

	stats := Stats{Pass: pass.Name()}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, instance := range instances {
		stats.Changed = stats.Changed || changed[i]
		stats.Merges += merges(instance)
	}
	return stats, nil
}

func merges(pass Pass) int {
	if counter, ok := pass.(MergeCounter); ok {
		return counter.Merges()
	}
	return 0
}
