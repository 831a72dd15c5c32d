package holders

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/holders"
)

// State is a mutable holder set being brought up to date.
// It is built from a prior snapshot (incremental) or from live ownership (full),
// and never aliases the holders of the snapshot it was built from.
type State struct {
	Holders map[common.Address]*holders.Holder

	// Touched holders need their tiers and rewards recomputed from chain
	Touched map[common.Address]struct{}

	// BurnsReplayed counts burn events applied by ApplyBurns
	BurnsReplayed uint64

	owners    map[uint64]common.Address
	burned    map[uint64]struct{}
	tierCount int
	log       *logger.Logger
}

func newState(tierCount int, log *logger.Logger) *State {
	return &State{
		Holders:   make(map[common.Address]*holders.Holder),
		Touched:   make(map[common.Address]struct{}),
		owners:    make(map[uint64]common.Address),
		burned:    make(map[uint64]struct{}),
		tierCount: tierCount,
		log:       log,
	}
}

// NewStateFromSnapshot copies the holders of prior. A nil prior yields an empty state.
func NewStateFromSnapshot(prior *holders.Snapshot, tierCount int, log *logger.Logger) *State {
	s := newState(tierCount, log)
	if prior == nil {
		return s
	}

	s.Holders = prior.HolderMap()
	for wallet, h := range s.Holders {
		// the tier table may have been resized since the snapshot was taken
		if len(h.Tiers) != tierCount {
			h.Tiers = make([]uint64, tierCount)
			s.Touched[wallet] = struct{}{}
		}
		for _, id := range h.TokenIDs {
			s.owners[id] = wallet
		}
	}

	return s
}

// OwnerOf returns the current owner of a token.
func (s *State) OwnerOf(id uint64) (common.Address, bool) {
	owner, ok := s.owners[id]
	return owner, ok
}

// TokenCount returns the number of tokens owned by all holders.
func (s *State) TokenCount() uint64 {
	return uint64(len(s.owners))
}

// ApplyBurns removes every burned token from its holder, deleting emptied holders.
// Non-burn deltas are ignored. A burn is counted in BurnsReplayed only when it removes an
// owned token or the token was minted in the same batch; other burns are already reflected
// in the prior state (a full rebuild counts tokens held by burn addresses) and are only logged.
func (s *State) ApplyBurns(deltas []holders.EventDelta) {
	mintedInBatch := make(map[uint64]struct{})
	for _, d := range deltas {
		if d.IsMint() {
			mintedInBatch[d.TokenID] = struct{}{}
		}
	}

	for _, d := range deltas {
		if d.Kind != holders.EventBurn {
			continue
		}

		if _, dup := s.burned[d.TokenID]; dup {
			continue
		}
		s.burned[d.TokenID] = struct{}{}

		owner, ok := s.owners[d.TokenID]
		if !ok {
			if _, minted := mintedInBatch[d.TokenID]; minted {
				s.BurnsReplayed++
				continue
			}
			s.log.Warnf("burn of token %d in block %d has no known holder, ignoring", d.TokenID, d.Block)
			continue
		}

		s.BurnsReplayed++
		s.removeToken(owner, d.TokenID)
	}
}

// ApplyTransfers moves tokens between holders in event order, creating recipients as needed.
// Tokens burned earlier in the same batch are never re-added.
func (s *State) ApplyTransfers(deltas []holders.EventDelta) {
	for _, d := range deltas {
		if d.Kind != holders.EventTransfer {
			continue
		}

		if _, burned := s.burned[d.TokenID]; burned {
			s.log.Debugf("skipping transfer of burned token %d in block %d", d.TokenID, d.Block)
			continue
		}

		if d.From != nil {
			if h, ok := s.Holders[*d.From]; ok && h.HasToken(d.TokenID) {
				s.removeToken(*d.From, d.TokenID)
			}
		}
		// a missed earlier event can leave the token with someone else
		if owner, ok := s.owners[d.TokenID]; ok {
			if d.From == nil || owner != *d.From {
				s.log.Warnf("token %d was held by %s, not by the transfer sender", d.TokenID, owner.Hex())
			}
			s.removeToken(owner, d.TokenID)
		}

		s.addToken(d.To, d.TokenID)
	}
}

// SetOwner assigns a token directly, used when building from live ownership.
func (s *State) SetOwner(id uint64, owner common.Address) {
	if prev, ok := s.owners[id]; ok {
		if prev == owner {
			return
		}
		s.removeToken(prev, id)
	}
	s.addToken(owner, id)
}

func (s *State) addToken(wallet common.Address, id uint64) {
	h, ok := s.Holders[wallet]
	if !ok {
		h = holders.NewHolder(wallet, s.tierCount)
		s.Holders[wallet] = h
	}

	h.AddToken(id)
	s.owners[id] = wallet
	s.Touched[wallet] = struct{}{}
}

func (s *State) removeToken(wallet common.Address, id uint64) {
	delete(s.owners, id)

	h, ok := s.Holders[wallet]
	if !ok {
		return
	}

	h.RemoveToken(id)
	if len(h.TokenIDs) == 0 {
		delete(s.Holders, wallet)
		delete(s.Touched, wallet)
		return
	}

	s.Touched[wallet] = struct{}{}
}

// TouchAll marks every holder for recomputation.
func (s *State) TouchAll() {
	for wallet := range s.Holders {
		s.Touched[wallet] = struct{}{}
	}
}

// TouchedWallets returns the touched wallets that still hold tokens, sorted.
func (s *State) TouchedWallets() []common.Address {
	out := make([]common.Address, 0, len(s.Touched))
	for wallet := range s.Touched {
		if _, ok := s.Holders[wallet]; ok {
			out = append(out, wallet)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}
