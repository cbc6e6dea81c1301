// Package models defines data structures shared across the SynthLink pipeline.
package models

// PhaseID identifies one of the four ordered pipeline phases.
type PhaseID string

const (
	PhasePreprocessing PhaseID = "preprocessing"
	PhaseTraining      PhaseID = "training"
	PhaseGeneration    PhaseID = "generation"
	PhaseValidation    PhaseID = "validation"
)

// PhaseOrder lists the phases in execution order. The pipeline is strictly
// forward-only: a phase never re-enters pending after leaving it within a run.
var PhaseOrder = []PhaseID{
	PhasePreprocessing,
	PhaseTraining,
	PhaseGeneration,
	PhaseValidation,
}

// PhaseStatus is the lifecycle state of a single phase.
type PhaseStatus string

const (
	StatusPending   PhaseStatus = "pending"
	StatusRunning   PhaseStatus = "running"
	StatusCompleted PhaseStatus = "completed"
	StatusError     PhaseStatus = "error"
)

// Phase is the per-step state exposed to the presentation layer.
type Phase struct {
	ID          PhaseID     `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Status      PhaseStatus `json:"status"`
	Progress    int         `json:"progress"` // 0-100
}

// NewPhases returns the four phases reset to pending/0.
func NewPhases() [4]Phase {
	return [4]Phase{
		{ID: PhasePreprocessing, Label: "Preprocessing", Description: "Preparing the dataset for training", Status: StatusPending},
		{ID: PhaseTraining, Label: "Training", Description: "Training the generator model on the remote service", Status: StatusPending},
		{ID: PhaseGeneration, Label: "Generation", Description: "Sampling synthetic records from the trained model", Status: StatusPending},
		{ID: PhaseValidation, Label: "Validation", Description: "Validating the generated data", Status: StatusPending},
	}
}

// PhaseIndex returns the position of a phase in PhaseOrder, or -1 if unknown.
func PhaseIndex(id PhaseID) int {
	for i, p := range PhaseOrder {
		if p == id {
			return i
		}
	}
	return -1
}
