package population

import (
	"github.com/goran-ethernal/HolderIndexor/internal/metrics"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
)

var allSteps = []string{
	string(holders.StepIdle),
	string(holders.StepStarting),
	string(holders.StepFetchingSupply),
	string(holders.StepFetchingOwners),
	string(holders.StepFetchingEvents),
	string(holders.StepProcessingHolders),
	string(holders.StepProcessingEvents),
	string(holders.StepProcessingTransfers),
	string(holders.StepFinalizingCache),
	string(holders.StepCompleted),
	string(holders.StepError),
}

func stepSet(collection string, step holders.Step) {
	metrics.PopulationStepSet(collection, string(step), allSteps)
}
