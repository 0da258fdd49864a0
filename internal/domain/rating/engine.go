package rating

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithK sets the maximum rating change per match.
func WithK(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.params.K = k
		}
	}
}

// WithGoalDiffWeight sets how strongly the score margin scales a change.
func WithGoalDiffWeight(weight float64) Option {
	return func(e *Engine) {
		if weight >= 0 {
			e.params.GoalDiffWeight = weight
		}
	}
}

// WithSensitivity sets the multiplier applied to the surprise term.
func WithSensitivity(sensitivity float64) Option {
	return func(e *Engine) {
		if sensitivity > 0 {
			e.params.Sensitivity = sensitivity
		}
	}
}

// Engine applies UpdateRatings with a fixed set of parameters.
type Engine struct {
	params Params
}

// NewEngine creates an engine with default parameters, overridden by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{params: DefaultParams()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the parameters the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Update computes the new ratings for a match with the given outcome and margin.
func (e *Engine) Update(r1, r2 float64, outcome Outcome, scoreDifference int) (float64, float64) {
	return UpdateRatings(r1, r2, outcome.Score(), scoreDifference, e.params)
}
