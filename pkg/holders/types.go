package holders

import (
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind classifies an ownership change.
type EventKind string

const (
	// EventBurn is a transfer to the zero address or a configured burn address
	EventBurn EventKind = "burn"
	// EventTransfer is any other transfer, including mints
	EventTransfer EventKind = "transfer"
)

// EventDelta is one decoded Transfer event.
type EventDelta struct {
	Kind    EventKind `json:"kind"`
	TokenID uint64    `json:"tokenId"`
	// From is nil for mints
	From     *common.Address `json:"from,omitempty"`
	To       common.Address  `json:"to"`
	Block    uint64          `json:"block"`
	LogIndex uint            `json:"logIndex"`
}

// IsMint reports whether the delta created the token.
func (d EventDelta) IsMint() bool {
	return d.From == nil
}

// SortDeltas orders deltas by block and log index.
func SortDeltas(deltas []EventDelta) {
	slices.SortStableFunc(deltas, func(a, b EventDelta) int {
		if a.Block != b.Block {
			if a.Block < b.Block {
				return -1
			}
			return 1
		}
		return int(a.LogIndex) - int(b.LogIndex)
	})
}

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Checkpoint is the last block fully replayed for a collection.
type Checkpoint struct {
	LastProcessedBlock uint64    `json:"lastProcessedBlock"`
	LastUpdated        time.Time `json:"lastUpdated"`
	// SkippedRanges were assumed empty by the fast-forward probe and never scanned
	SkippedRanges []BlockRange `json:"skippedRanges,omitempty"`
}

// Holder is the aggregated state of one wallet in a collection.
type Holder struct {
	Wallet common.Address `json:"wallet"`
	// TokenIDs is kept sorted ascending
	TokenIDs []uint64 `json:"tokenIds"`
	// Tiers counts tokens per tier, indexed by position in the collection tier table
	Tiers             []uint64          `json:"tiers"`
	MultiplierSum     uint64            `json:"multiplierSum"`
	Rewards           map[string]Amount `json:"rewards,omitempty"`
	PercentageOfPool  float64           `json:"percentageOfPool"`
	Rank              int               `json:"rank"`
	UnknownTierTokens []uint64          `json:"unknownTierTokens,omitempty"`
}

// NewHolder creates an empty holder with a zeroed tier table of the given size.
func NewHolder(wallet common.Address, tierCount int) *Holder {
	return &Holder{
		Wallet:   wallet,
		TokenIDs: []uint64{},
		Tiers:    make([]uint64, tierCount),
	}
}

// HasToken reports whether the holder owns id.
func (h *Holder) HasToken(id uint64) bool {
	_, found := slices.BinarySearch(h.TokenIDs, id)
	return found
}

// AddToken adds id, keeping TokenIDs sorted. Adding an owned token is a no-op.
func (h *Holder) AddToken(id uint64) {
	i, found := slices.BinarySearch(h.TokenIDs, id)
	if found {
		return
	}
	h.TokenIDs = slices.Insert(h.TokenIDs, i, id)
}

// RemoveToken removes id and reports whether it was owned.
func (h *Holder) RemoveToken(id uint64) bool {
	i, found := slices.BinarySearch(h.TokenIDs, id)
	if !found {
		return false
	}
	h.TokenIDs = slices.Delete(h.TokenIDs, i, i+1)
	return true
}

// Clone returns a deep copy of the holder.
func (h *Holder) Clone() *Holder {
	c := *h
	c.TokenIDs = slices.Clone(h.TokenIDs)
	c.Tiers = slices.Clone(h.Tiers)
	c.UnknownTierTokens = slices.Clone(h.UnknownTierTokens)
	if h.Rewards != nil {
		c.Rewards = make(map[string]Amount, len(h.Rewards))
		for k, v := range h.Rewards {
			c.Rewards[k] = v
		}
	}
	return &c
}

// Snapshot is the servable holder index of a collection.
type Snapshot struct {
	Collection string `json:"collection"`
	// Holders are ordered by rank
	Holders            []*Holder         `json:"holders"`
	TotalBurned        uint64            `json:"totalBurned"`
	TotalMinted        uint64            `json:"totalMinted"`
	LiveSupply         uint64            `json:"liveSupply"`
	TierDistribution   []uint64          `json:"tierDistribution"`
	MultiplierPool     uint64            `json:"multiplierPool"`
	Globals            map[string]Amount `json:"globals,omitempty"`
	LastProcessedBlock uint64            `json:"lastProcessedBlock"`
	Timestamp          time.Time         `json:"timestamp"`
}

// HolderByWallet finds the holder of a wallet.
func (s *Snapshot) HolderByWallet(wallet common.Address) (*Holder, bool) {
	for _, h := range s.Holders {
		if h.Wallet == wallet {
			return h, true
		}
	}
	return nil, false
}

// HolderMap returns deep copies of the snapshot holders keyed by wallet.
func (s *Snapshot) HolderMap() map[common.Address]*Holder {
	m := make(map[common.Address]*Holder, len(s.Holders))
	for _, h := range s.Holders {
		m[h.Wallet] = h.Clone()
	}
	return m
}

// Step is a state of the population state machine.
type Step string

const (
	StepIdle                Step = "idle"
	StepStarting            Step = "starting"
	StepFetchingSupply      Step = "fetching_supply"
	StepFetchingOwners      Step = "fetching_owners"
	StepFetchingEvents      Step = "fetching_events"
	StepProcessingHolders   Step = "processing_holders"
	StepProcessingEvents    Step = "processing_events"
	StepProcessingTransfers Step = "processing_transfers"
	StepFinalizingCache     Step = "finalizing_cache"
	StepCompleted           Step = "completed"
	StepError               Step = "error"
)

// IsTerminal reports whether no run is in flight in this step.
func (s Step) IsTerminal() bool {
	return s == StepIdle || s == StepCompleted || s == StepError
}

// Error log phases.
const (
	PhaseSync         = "sync"
	PhaseFetchSupply  = "fetch_supply"
	PhaseFetchOwner   = "fetch_owner"
	PhaseBurn         = "burn"
	PhaseFetchTier    = "fetch_tier"
	PhaseFetchRewards = "fetch_rewards"
	PhaseFetchGlobals = "fetch_globals"
	PhaseFinalize     = "finalize"
)

// ErrorLogEntry records a recovered or fatal error of a population run.
type ErrorLogEntry struct {
	Phase     string          `json:"phase"`
	TokenID   *uint64         `json:"tokenId,omitempty"`
	Wallet    *common.Address `json:"wallet,omitempty"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// Population modes.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// ProgressState is the observable state of the population of one collection.
type ProgressState struct {
	RunID              string          `json:"runId,omitempty"`
	Step               Step            `json:"step"`
	Mode               string          `json:"mode,omitempty"`
	ProcessedCount     uint64          `json:"processedCount"`
	TotalCount         uint64          `json:"totalCount"`
	Error              string          `json:"error,omitempty"`
	ErrorLog           []ErrorLogEntry `json:"errorLog,omitempty"`
	StartedAt          time.Time       `json:"startedAt,omitzero"`
	UpdatedAt          time.Time       `json:"updatedAt,omitzero"`
	LastUpdated        time.Time       `json:"lastUpdated,omitzero"`
	LastProcessedBlock uint64          `json:"lastProcessedBlock"`
}

// TriggerStatus is the answer to a population trigger.
type TriggerStatus string

const (
	StatusStarted    TriggerStatus = "started"
	StatusInProgress TriggerStatus = "in_progress"
)

// Summary describes a snapshot without its holders.
type Summary struct {
	HolderCount        int               `json:"holderCount"`
	TotalBurned        uint64            `json:"totalBurned"`
	TotalMinted        uint64            `json:"totalMinted"`
	LiveSupply         uint64            `json:"liveSupply"`
	MultiplierPool     uint64            `json:"multiplierPool"`
	TierDistribution   []uint64          `json:"tierDistribution"`
	Globals            map[string]Amount `json:"globals,omitempty"`
	LastProcessedBlock uint64            `json:"lastProcessedBlock"`
	LastUpdated        time.Time         `json:"lastUpdated,omitzero"`
}

// HolderPage is one page of a holder listing.
type HolderPage struct {
	Holders    []*Holder `json:"holders"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalPages int       `json:"totalPages"`
	Summary    Summary   `json:"summary"`
}
