package ports

import "context"

// JobRegistry is the external owner of service jobs.
type JobRegistry interface {
	// CountOpenJobs returns non-terminal job counts per technician in one call.
	// Technicians without open jobs may be absent from the map.
	CountOpenJobs(ctx context.Context, companyID string, branchID string, technicianIDs []string) (map[string]int, error)
}
