package fetcher

// Window is one bounded eth_getLogs block range, inclusive on both ends.
type Window struct {
	FromBlock uint64
	ToBlock   uint64
}

// Size returns the number of blocks in the window.
func (w Window) Size() uint64 {
	return w.ToBlock - w.FromBlock + 1
}

// SplitWindows splits [from, to] into windows of at most size blocks aligned to from.
// The last window ends at to, so no block past to is ever queried.
func SplitWindows(from, to, size uint64) []Window {
	if from > to || size == 0 {
		return nil
	}

	windows := make([]Window, 0, (to-from)/size+1)
	for start := from; ; start += size {
		end := to
		if to-start >= size {
			end = start + size - 1
		}
		windows = append(windows, Window{FromBlock: start, ToBlock: end})

		// checked before advancing so ranges ending at MaxUint64 cannot overflow
		if end == to {
			break
		}
	}

	return windows
}

// AlignDown returns the largest block on the window grid starting at origin that is <= block.
func AlignDown(block, origin, size uint64) uint64 {
	if block <= origin || size == 0 {
		return origin
	}
	return origin + (block-origin)/size*size
}
