package site

import (
	"errors"
	"fmt"
)

// Stage identifies a step of a pipeline run.
type Stage string

const (
	StageStage    Stage = "stage"
	StageAssemble Stage = "assemble"
	StageBuild    Stage = "build"
	StagePublish  Stage = "publish"
)

// ErrAllocationConflict is returned when no free slug could be found after
// exhausting the numbered suffixes.
var ErrAllocationConflict = errors.New("could not allocate a unique directory slug")

// ErrBuildTimeout is returned when the external site generator exceeds the
// configured build timeout.
var ErrBuildTimeout = errors.New("site build timed out")

// ErrSlugNotAssigned is returned when a publish flow is started for a user
// that has no directory slug yet.
var ErrSlugNotAssigned = errors.New("profile has no directory slug assigned")

// ErrNoPosts is returned when the blog publish flow is started for a user
// without any blog posts.
var ErrNoPosts = errors.New("user has no blog posts to publish")

// BuildFailedError carries the combined output of a failed generator run for
// diagnostics. The raw output is logged, never shown to end users.
type BuildFailedError struct {
	Output string
	Err    error
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("site build failed: %v", e.Err)
}

func (e *BuildFailedError) Unwrap() error { return e.Err }

// StageError reports which pipeline stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %q failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage extracts the failing stage from a pipeline error, or "" when
// the error did not originate in a stage.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
