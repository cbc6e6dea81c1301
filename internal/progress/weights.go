// Package progress provides the phase weighting math and progress
// reporting for CLI and embedded frontends.
package progress

import (
	"github.com/synthlab/synthlink/internal/models"
)

// PhaseWeights maps each pipeline phase to its share of overall progress.
// The weights sum to exactly 100.
var PhaseWeights = map[models.PhaseID]int{
	models.PhasePreprocessing: 25,
	models.PhaseTraining:      35,
	models.PhaseGeneration:    30,
	models.PhaseValidation:    10,
}

// Overall maps a phase's local progress onto the single overall percentage:
// the cumulative weight of all phases before it, plus the weighted share of
// its own local progress. Local progress is clamped into [0,100] first.
func Overall(phase models.PhaseID, local int) int {
	idx := models.PhaseIndex(phase)
	if idx < 0 {
		return 0
	}

	if local < 0 {
		local = 0
	}
	if local > 100 {
		local = 100
	}

	prior := 0
	for _, id := range models.PhaseOrder[:idx] {
		prior += PhaseWeights[id]
	}

	return prior + local*PhaseWeights[phase]/100
}
