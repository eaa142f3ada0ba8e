package ml

import "fmt"

// InputShapeError indicates a batch whose width or values do not match what an
// artifact was fitted on.
type InputShapeError struct {
	Want int
	Got  int
	Err  error
}

func (e *InputShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input shape: expected %d features, got %d: %v", e.Want, e.Got, e.Err)
	}
	return fmt.Sprintf("invalid input shape: expected %d features, got %d", e.Want, e.Got)
}

func (e *InputShapeError) Unwrap() error { return e.Err }

// CapabilityUnavailableError indicates a classifier that cannot estimate class
// probabilities, e.g. a hard-voting ensemble or an SVC fitted without Platt
// scaling.
type CapabilityUnavailableError struct {
	Model string
}

func (e *CapabilityUnavailableError) Error() string {
	return fmt.Sprintf("%s does not support probability estimation", e.Model)
}

// ArtifactLoadError indicates a pre-fitted artifact that could not be read or
// decoded.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }
