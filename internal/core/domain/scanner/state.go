// internal/core/domain/scanner/state.go
package scanner

import "errors"

// ErrScanInProgress - цикл уже выполняется
var ErrScanInProgress = errors.New("scan already in progress")

// State - стадия цикла сканирования
type State int32

const (
	StateIdle State = iota
	StateFetchingMetadata
	StateFiltering
	StateScanning
	StateAggregating
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingMetadata:
		return "fetching_metadata"
	case StateFiltering:
		return "filtering"
	case StateScanning:
		return "scanning"
	case StateAggregating:
		return "aggregating"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
