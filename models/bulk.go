package models

import "time"

// BulkItem is a single deletion attempt recorded by a bulk operation.
type BulkItem struct {
	Stage      string `json:"stage"`
	Collection string `json:"collection"`
	ID         int    `json:"id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BulkResult is the audit record of a best-effort bulk operation. A run that returns
// without error may still carry failed items.
type BulkResult struct {
	JobID      string     `json:"job_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Succeeded  []BulkItem `json:"succeeded"`
	Failed     []BulkItem `json:"failed"`
}

func (r *BulkResult) Complete() bool {
	return len(r.Failed) == 0
}

// CountByCollection returns succeeded deletions per collection.
func (r *BulkResult) CountByCollection() map[string]int {
	counts := make(map[string]int)
	for _, item := range r.Succeeded {
		counts[item.Collection]++
	}
	return counts
}
