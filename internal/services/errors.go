package services

// AnalysisError is a fatal failure of the vision identification call. It
// carries the raw upstream text when available so the client can see what
// the model actually returned. Pricing failures never produce this error;
// they degrade to the fallback paths and surface only through price_source.
type AnalysisError struct {
	Message  string
	Upstream string // raw model output, when available
	Err      error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
