package memory

import (
	"context"
	"slices"

	perfsync "github.com/goliatone/go-perfsync"
)

// Rating operations, as accepted by FailNext and Calls.
const (
	OpListMyRatings    = "ratings.list_mine"
	OpListActiveCycle  = "ratings.list_active_cycle"
	OpCreateRating     = "ratings.create"
	OpUpdateManager    = "ratings.update_manager"
	OpSubmitRating     = "ratings.submit"
	OpCalibrateRating  = "ratings.calibrate"
	defaultRatingCycle = "Active cycle"
)

// Ratings is an in-memory RatingsAPI acting on behalf of user self.
type Ratings struct {
	server

	self    int64
	cycle   string
	nextID  int64
	names   map[int64]string
	ratings []perfsync.Rating
	// Scorer computes the score of a new rating. It defaults to 0.
	Scorer func(employeeID int64) float64
}

// NewRatings returns an empty rating server for user self.
func NewRatings(self int64) *Ratings {
	return &Ratings{
		server: newServer(),
		self:   self,
		cycle:  defaultRatingCycle,
		names:  map[int64]string{},
	}
}

// Name sets the display name reported for an employee.
func (r *Ratings) Name(employeeID int64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[employeeID] = name
}

// Seed stores ratings, assigning ids and the active cycle where missing.
func (r *Ratings) Seed(ratings ...perfsync.Rating) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rating := range ratings {
		if rating.ID == 0 {
			r.nextID++
			rating.ID = r.nextID
		}
		r.nextID = max(r.nextID, rating.ID)
		if rating.CycleName == "" {
			rating.CycleName = r.cycle
		}
		if rating.Status == "" {
			rating.Status = perfsync.RatingDraft
		}
		r.ratings = append(r.ratings, rating)
	}
}

// Rating returns the stored rating.
func (r *Ratings) Rating(id int64) (perfsync.Rating, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx := r.index(id); idx >= 0 {
		return r.ratings[idx], true
	}
	return perfsync.Rating{}, false
}

func (r *Ratings) ListMine(ctx context.Context, number, size int) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, OpListMyRatings); err != nil {
		return nil, err
	}
	return page(OpListMyRatings, r.filter(func(rating perfsync.Rating) bool {
		return rating.EmployeeID == r.self
	}), number, size)
}

func (r *Ratings) ListActiveCycle(ctx context.Context, number, size int) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, OpListActiveCycle); err != nil {
		return nil, err
	}
	return page(OpListActiveCycle, r.filter(func(rating perfsync.Rating) bool {
		return rating.CycleName == r.cycle
	}), number, size)
}

func (r *Ratings) Create(ctx context.Context, input perfsync.CreateRatingInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, OpCreateRating); err != nil {
		return err
	}
	for _, rating := range r.ratings {
		if rating.EmployeeID == input.EmployeeID && rating.CycleName == r.cycle {
			return conflict(OpCreateRating, "A rating already exists for this employee in the active cycle.")
		}
	}
	var score float64
	if r.Scorer != nil {
		score = r.Scorer(input.EmployeeID)
	}
	r.nextID++
	r.ratings = append(r.ratings, perfsync.Rating{
		ID:                   r.nextID,
		EmployeeID:           input.EmployeeID,
		EmployeeName:         r.names[input.EmployeeID],
		Score:                score,
		ManagerJustification: input.ManagerJustification,
		Status:               perfsync.RatingDraft,
		CycleName:            r.cycle,
	})
	return nil
}

func (r *Ratings) UpdateManager(ctx context.Context, id int64, input perfsync.UpdateManagerRatingInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, OpUpdateManager); err != nil {
		return err
	}
	idx, err := r.inStatus(OpUpdateManager, id, perfsync.RatingDraft, "Only draft ratings can be edited.")
	if err != nil {
		return err
	}
	r.ratings[idx].Score = float64(input.Score)
	r.ratings[idx].ManagerJustification = input.Justification
	return nil
}

func (r *Ratings) Submit(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, OpSubmitRating); err != nil {
		return err
	}
	idx, err := r.inStatus(OpSubmitRating, id, perfsync.RatingDraft, "Only draft ratings can be submitted.")
	if err != nil {
		return err
	}
	r.ratings[idx].Status = perfsync.RatingManagerSubmitted
	return nil
}

func (r *Ratings) Calibrate(ctx context.Context, id int64, input perfsync.CalibrateRatingInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin(ctx, OpCalibrateRating); err != nil {
		return err
	}
	idx, err := r.inStatus(OpCalibrateRating, id, perfsync.RatingManagerSubmitted, "Only submitted ratings can be calibrated.")
	if err != nil {
		return err
	}
	r.ratings[idx].Score = input.NewScore
	r.ratings[idx].HRJustification = input.Justification
	r.ratings[idx].Status = perfsync.RatingCalibrated
	return nil
}

func (r *Ratings) filter(keep func(perfsync.Rating) bool) []perfsync.Rating {
	out := []perfsync.Rating{}
	for _, rating := range r.ratings {
		if keep(rating) {
			out = append(out, rating)
		}
	}
	return out
}

func (r *Ratings) index(id int64) int {
	return slices.IndexFunc(r.ratings, func(rating perfsync.Rating) bool { return rating.ID == id })
}

func (r *Ratings) inStatus(op string, id int64, status perfsync.RatingStatus, message string) (int, error) {
	idx := r.index(id)
	if idx < 0 {
		return -1, notFound(op, "Rating not found.")
	}
	if r.ratings[idx].Status != status {
		return -1, conflict(op, message)
	}
	return idx, nil
}

var _ perfsync.RatingsAPI = (*Ratings)(nil)
