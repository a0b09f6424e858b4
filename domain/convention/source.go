package convention

import "context"

// DataSource reads tenant data from the relational store. Implementations
// are strictly read-only.
type DataSource interface {
	// ActiveConventionIDs lists the tenants eligible for indexing.
	ActiveConventionIDs(ctx context.Context) ([]int64, error)

	// Bundle fetches the fully-populated entity graph for one tenant.
	Bundle(ctx context.Context, conventionID int64) (Bundle, error)
}
