package rpc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/HolderIndexor/internal/common"
)

// ErrRateLimited is returned once the provider keeps rate limiting past the retry budget.
var ErrRateLimited = errors.New("rpc provider rate limit exceeded")

var (
	tooManyResultsRe = regexp.MustCompile(`(?i)query returned more than \d+ results`)
	suggestedRangeRe = regexp.MustCompile(`\[(0x[0-9a-fA-F]+),\s*(0x[0-9a-fA-F]+)\]`)
)

// IsTooManyResultsError checks if the error is the provider's log size limit error.
// Providers put the hint either in the DataError payload or in the message itself.
func IsTooManyResultsError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		errData := fmt.Sprintf("%v", dataErr.ErrorData())
		if tooManyResultsRe.MatchString(errData) {
			return true, errData
		}
	}

	msg := err.Error()
	if tooManyResultsRe.MatchString(msg) {
		return true, msg
	}

	return false, ""
}

// ParseSuggestedBlockRange attempts to extract the suggested block range from the error message.
// Returns the suggested fromBlock and toBlock, and true if successfully parsed.
// Expected format: "Query returned more than 10000 results. Try with this block range [0x7dfd25, 0x7e0fcc]."
func ParseSuggestedBlockRange(err string) (fromBlock, toBlock uint64, ok bool) {
	if err == "" {
		return 0, 0, false
	}

	matches := suggestedRangeRe.FindStringSubmatch(err)

	const expectedMatches = 3 // full match + 2 groups
	if len(matches) != expectedMatches {
		return 0, 0, false
	}

	from, err1 := common.ParseUint64orHex(&matches[1])
	to, err2 := common.ParseUint64orHex(&matches[2])

	if err1 != nil || err2 != nil || from > to {
		return 0, 0, false
	}

	return from, to, true
}

// isRateLimitError reports provider throttling (HTTP 429 or JSON-RPC limit messages).
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == 429 { //nolint:mnd
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "compute units")
}
