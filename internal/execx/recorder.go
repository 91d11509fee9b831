package execx

import (
	"context"
	"sync"
)

// Recorder is a Runner that records every command instead of executing it.
// Responses can be scripted per program name; unscripted commands succeed
// with empty output.
type Recorder struct {
	mu        sync.Mutex
	calls     []Command
	responses map[string]Response
}

// Response is the scripted outcome for a program name.
type Response struct {
	Result *Result
	Err    error
	// Hook runs before the response is returned, e.g. to create files the
	// real program would have produced.
	Hook func(Command)
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{responses: make(map[string]Response)}
}

// On scripts the response for every later call whose Name equals name.
func (r *Recorder) On(name string, resp Response) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[name] = resp
	return r
}

// Run implements Runner.
func (r *Recorder) Run(ctx context.Context, c Command) (*Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	resp, ok := r.responses[c.Name]
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return &Result{}, nil
	}
	if resp.Hook != nil {
		resp.Hook(c)
	}
	res := resp.Result
	if res == nil {
		res = &Result{}
	}
	return res, resp.Err
}

// Calls returns a copy of the recorded commands in call order.
func (r *Recorder) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// Names returns the command lines of all recorded calls.
func (r *Recorder) Names() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
