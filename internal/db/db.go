package db

import (
	"context"
	"time"
)

// Store is the candidate store facade used by the composition root.
type Store interface {
	Pinger
	Searcher
	RoutineChecker
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs vector similarity search.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}

// RoutineChecker reports whether the similarity-search routine (an FT index
// or a SQL function, depending on the driver) is deployed.
type RoutineChecker interface {
	SearchRoutineExists(ctx context.Context, name string) (bool, error)
}
