package perfsync

// RatingStatus is the lifecycle state of a Rating.
type RatingStatus string

const (
	RatingDraft            RatingStatus = "DRAFT"
	RatingManagerSubmitted RatingStatus = "MANAGER_SUBMITTED"
	RatingCalibrated       RatingStatus = "CALIBRATED"
	RatingFinalized        RatingStatus = "FINALIZED"
)

// Rating is the performance score of one employee for one cycle. The score is
// computed by the server from the employee's goals.
type Rating struct {
	ID                   int64        `json:"id"`
	EmployeeID           int64        `json:"employeeId"`
	EmployeeName         string       `json:"employeeName,omitempty"`
	Score                float64      `json:"score"`
	ManagerJustification string       `json:"managerJustification,omitempty"`
	HRJustification      string       `json:"hrJustification,omitempty"`
	Status               RatingStatus `json:"status"`
	CycleName            string       `json:"cycleName,omitempty"`
}

// RatingsState is the snapshot published by a RatingsStore. Mine holds the
// caller's own rating(s); Team holds the active cycle's ratings.
type RatingsState struct {
	Mine  CollectionView[Rating]
	Team  CollectionView[Rating]
	Error string
}
