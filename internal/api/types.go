package api

import "time"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// InitializeResponse reports the outcome of InitializeInspection.
type InitializeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Created bool   `json:"created"`
}

// SubmitStageRequest is the body of SubmitInspectionStage.
type SubmitStageRequest struct {
	TaskID           int64          `json:"taskId,omitempty"`
	InspectionTypeID int64          `json:"inspectionTypeId"`
	Decision         string         `json:"decision"`
	Comment          *string        `json:"comment,omitempty"`
	Inputs           map[string]any `json:"inputs,omitempty"`
}

// SubmitStageResponse reports the outcome of SubmitInspectionStage.
type SubmitStageResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	StageID        int64  `json:"stageId"`
	Status         string `json:"status"`
	Recommendation string `json:"recommendation"`
	Resolution     string `json:"resolution"`
}

// StageView is one stage instance with its derived gating.
type StageView struct {
	ID               int64          `json:"id"`
	InspectionTypeID int64          `json:"inspectionTypeId"`
	StageName        string         `json:"stageName,omitempty"`
	Order            *int           `json:"order"`
	Required         bool           `json:"required"`
	Status           string         `json:"status"`
	DueDate          string         `json:"dueDate,omitempty"`
	SubmittedAt      string         `json:"submittedAt,omitempty"`
	Comment          *string        `json:"comment,omitempty"`
	Inputs           map[string]any `json:"inputs,omitempty"`
	Editable         bool           `json:"editable"`
	AllowedDecisions []string       `json:"allowedDecisions"`
	Recommendation   string         `json:"recommendation"`
}

// InspectionView is the GetInspection payload.
type InspectionView struct {
	ParentReturnID       int64       `json:"parentReturnId"`
	Initialized          bool        `json:"initialized"`
	FirstActionableOrder *int        `json:"firstActionableOrder"`
	Resolved             bool        `json:"resolved"`
	Stages               []StageView `json:"stages"`
}

// RecommendationView is the signal the parent approval workflow reads.
type RecommendationView struct {
	ParentReturnID int64  `json:"parentReturnId"`
	Recommendation string `json:"recommendation"`
	StageID        int64  `json:"stageId,omitempty"`
	StageName      string `json:"stageName,omitempty"`
	Decision       string `json:"decision,omitempty"`
	SubmittedAt    string `json:"submittedAt,omitempty"`
}

// StoreStats summarizes database contents.
type StoreStats struct {
	Crops          int `json:"crops"`
	Templates      int `json:"templates"`
	Returns        int `json:"returns"`
	Checklists     int `json:"checklists"`
	Stages         int `json:"stages"`
	PendingStages  int `json:"pendingStages"`
	ResolvedStages int `json:"resolvedStages"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool       `json:"running"`
	PID          int        `json:"pid"`
	DatabasePath string     `json:"databasePath"`
	LockFilePath string     `json:"lockFilePath"`
	APIBind      string     `json:"apiBind"`
	StartedAt    string     `json:"startedAt,omitempty"`
	Stats        StoreStats `json:"stats"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	RequestID string `json:"requestId,omitempty"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
