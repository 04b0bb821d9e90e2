package perfsync

import "context"

// Logical collections. Each one has its own request sequence.
const (
	CollectionMyGoals     = "goals.mine"
	CollectionTeamGoals   = "goals.team"
	CollectionMyRatings   = "ratings.mine"
	CollectionTeamRatings = "ratings.team"
)

// GoalsAPI is the remote access port for goals. List calls return the raw
// decoded JSON envelope ({content, number, totalPages}); its shape is not
// trusted. Failures should be *RemoteError when the server supplied a
// message.
type GoalsAPI interface {
	ListMine(ctx context.Context, page, size int) (map[string]any, error)
	ListTeam(ctx context.Context, page, size int) (map[string]any, error)
	Create(ctx context.Context, input CreateGoalInput) error
	Update(ctx context.Context, id int64, input UpdateGoalInput) error
	Delete(ctx context.Context, id int64) error
	Submit(ctx context.Context, id int64) error
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string) error
	UpdateKeyResultProgress(ctx context.Context, keyResultID int64, value float64) error
}

// RatingsAPI is the remote access port for ratings.
type RatingsAPI interface {
	ListMine(ctx context.Context, page, size int) (map[string]any, error)
	ListActiveCycle(ctx context.Context, page, size int) (map[string]any, error)
	Create(ctx context.Context, input CreateRatingInput) error
	UpdateManager(ctx context.Context, id int64, input UpdateManagerRatingInput) error
	Submit(ctx context.Context, id int64) error
	Calibrate(ctx context.Context, id int64, input CalibrateRatingInput) error
}

// Sequencer issues per-collection request tokens. *state.Sequencer is the
// default implementation.
type Sequencer interface {
	Begin(key string) uint64
	Current(key string, token uint64) bool
}
