// Package progress provides reusable progress-reporting helpers.
package progress

// Callback receives stage progress updates. total is zero when the overall
// size is not known up front, which is the normal case for a remote walk.
type Callback func(stage string, processed, total int)

// Emit calls cb with clamped values. It is a no-op when cb is nil. A
// non-positive total is passed through as zero (indeterminate).
func Emit(cb Callback, stage string, processed, total int) {
	if cb == nil {
		return
	}

	if processed < 0 {
		processed = 0
	}
	if total <= 0 {
		total = 0
	} else if processed > total {
		processed = total
	}

	cb(stage, processed, total)
}
