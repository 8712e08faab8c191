package pipeline

import "errors"

// ErrUnknownStage is returned when a transition targets a stage id that is
// not part of the pipeline.
var ErrUnknownStage = errors.New("unknown pipeline stage")
