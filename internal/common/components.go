package common

const (
	ComponentChainReader   = "chain-reader"
	ComponentEventSync     = "event-sync"
	ComponentReconstructor = "reconstructor"
	ComponentAggregator    = "aggregator"
	ComponentPopulation    = "population"
	ComponentScheduler     = "scheduler"
	ComponentStore         = "store"
	ComponentAPI           = "api"
	ComponentMaintenance   = "maintenance"
)

var AllComponents = map[string]struct{}{
	ComponentChainReader:   {},
	ComponentEventSync:     {},
	ComponentReconstructor: {},
	ComponentAggregator:    {},
	ComponentPopulation:    {},
	ComponentScheduler:     {},
	ComponentStore:         {},
	ComponentAPI:           {},
	ComponentMaintenance:   {},
}
