package model

import "time"

// MaxHistory bounds the submission history; older records are evicted.
const MaxHistory = 20

// HistoryRecord is written once per successful submission and never mutated.
type HistoryRecord struct {
	CreatedAt   time.Time `json:"createdAt"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ProjectName string    `json:"projectName"`
	IssueURL    string    `json:"issueUrl"`
	IssueID     int64     `json:"issueId"` // GitLab iid
}
