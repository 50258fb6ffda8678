package model

import "context"

// StoredPlan is one persisted itinerary of a session.
type StoredPlan struct {
	PlanID    string         `json:"plan_id"`
	Name      string         `json:"name"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	RouteData PlanRecordData `json:"route_data"`
}

// PlanRecordData is what a finished run hands to the store.
type PlanRecordData struct {
	Plan        *TravelPlanResult `json:"plan"`
	Meta        *RunMeta          `json:"meta,omitempty"`
	GeneratedAt string            `json:"generated_at"`
}

type PlanRepository interface {
	// Create stores data under sessionID, marks it active and returns the new plan id
	Create(ctx context.Context, sessionID string, data PlanRecordData, name string) (string, error)

	// Get returns a stored plan
	Get(ctx context.Context, sessionID, planID string) (*StoredPlan, error)

	// Active returns the most recently created or activated plan
	Active(ctx context.Context, sessionID string) (*StoredPlan, error)

	// SetActive marks an existing plan as active
	SetActive(ctx context.Context, sessionID, planID string) error

	// List returns all plans of a session in creation order
	List(ctx context.Context, sessionID string) ([]*StoredPlan, error)

	// Delete removes one plan
	Delete(ctx context.Context, sessionID, planID string) error
}

// SearchProvider returns notes for one query. Zero results is not an error.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]SearchNote, error)
}
