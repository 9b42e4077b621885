package visualizer

import (
	"fmt"
	"time"

	"github.com/hypervector/hdviz/internal/config"
)

// Outcome is the result of one requested output in a batch run.
type Outcome struct {
	Request  config.Output `json:"request"`
	Output   string        `json:"output,omitempty"`
	Shown    bool          `json:"shown,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// OK reports whether the request succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Run renders each request in order. A failed request is recorded in its
// Outcome and the run continues, unless failFast is set, in which case the
// run stops after the first failure. Only attempted requests are returned.
func (v *Visualizer) Run(requests []config.Output, failFast bool) []Outcome {
	outcomes := make([]Outcome, 0, len(requests))
	for _, req := range requests {
		start := time.Now()
		v.logger.Info("rendering", "request", req.String())

		output, shown, err := v.dispatch(req)
		o := Outcome{Request: req, Output: output, Shown: shown, Err: err, Duration: time.Since(start)}
		if err != nil {
			o.Error = err.Error()
			v.logger.Warn("request failed", "request", req.String(), "error", err)
		} else {
			v.logger.Info("rendered", "request", req.String(), "output", output, "duration", o.Duration)
		}
		outcomes = append(outcomes, o)

		if err != nil && failFast {
			break
		}
	}
	return outcomes
}

// Failed counts the failed outcomes.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

func (v *Visualizer) dispatch(req config.Output) (string, bool, error) {
	if err := req.Validate(); err != nil {
		return "", false, fmt.Errorf("invalid request: %w", err)
	}

	switch req.Kind {
	case config.KindPair:
		output, err := v.RenderSideBySidePair(req.Dataset)
		return output, false, err
	case config.KindHeatmap:
		res, err := v.RenderHeatmap(req.Input, req.Title, req.Output)
		if err != nil {
			return "", false, err
		}
		return res.Output, res.Shown, nil
	default: // config.KindTSNE
		res, err := v.ProjectFile(req.Input, req.Labels, req.Title, req.Output)
		if err != nil {
			return "", false, err
		}
		return res.Output, res.Shown, nil
	}
}
