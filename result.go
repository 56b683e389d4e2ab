package validemail

// Result is the outcome of one Validate call. Checks holds one entry per
// level that ran, in pipeline order; the pipeline stops at the first
// failing level, so at most the last entry has Passed == false.
type Result struct {
	Email  string        `json:"email"`
	Valid  bool          `json:"valid"`
	Checks []CheckResult `json:"checks"`
}

// FailedChecks returns those CheckResults that did not pass.
func (r Result) FailedChecks() []CheckResult {
	var out []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Failure returns the level that rejected the address.
func (r Result) Failure() (CheckResult, bool) {
	if r.Valid || len(r.Checks) == 0 {
		return CheckResult{}, false
	}
	last := r.Checks[len(r.Checks)-1]
	return last, !last.Passed
}

// CheckFor returns the CheckResult for the given level, if it exists.
// The second return value indicates whether the given level was executed.
func (r Result) CheckFor(level CheckLevel) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Level == level {
			return c, true
		}
	}
	return CheckResult{}, false
}

// TimedOut reports whether the MX verdict is the configured timeout value
// rather than an answer from DNS.
func (r Result) TimedOut() bool {
	mx, ok := r.CheckFor(LevelMX)
	return ok && mx.TimedOut
}
