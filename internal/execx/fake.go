package execx

import "context"

// Call records one invocation a fake runner received.
type Call struct {
	Spec   Spec
	Script *Script
}

// FakeRunner is a scripted Runner/InteractiveRunner for tests. It records
// every call and replays canned results in order (the last result repeats
// when calls outnumber results).
type FakeRunner struct {
	Calls   []Call
	Results []Result
	Errs    []error

	InteractiveResults []InteractiveResult

	// Hook, when set, runs on every call before the canned result is
	// returned. Tests use it to mimic subprocess side effects, like the
	// setup wizard writing its config file.
	Hook func(Spec)
}

var (
	_ Runner            = (*FakeRunner)(nil)
	_ InteractiveRunner = (*FakeRunner)(nil)
)

func (f *FakeRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	i := len(f.Calls)
	f.Calls = append(f.Calls, Call{Spec: spec})
	if f.Hook != nil {
		f.Hook(spec)
	}
	return pick(f.Results, i), pick(f.Errs, i)
}

func (f *FakeRunner) RunInteractive(ctx context.Context, spec Spec, script Script) (InteractiveResult, error) {
	i := len(f.Calls)
	f.Calls = append(f.Calls, Call{Spec: spec, Script: &script})
	if f.Hook != nil {
		f.Hook(spec)
	}
	return pick(f.InteractiveResults, i), pick(f.Errs, i)
}

func pick[T any](xs []T, i int) T {
	var zero T
	if len(xs) == 0 {
		return zero
	}
	if i >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[i]
}
