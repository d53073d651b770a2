package api

import (
	"time"

	"github.com/feedscribe/feedscribe/internal/taskmanager"
)

// Common request/response structures

// TokenRequest defines the payload for the admin token endpoint.
type TokenRequest struct {
	Password string `json:"password" validate:"required,min=1"`
}

// TokenResponse defines the successful response for the admin token endpoint.
type TokenResponse struct {
	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateFeedRequest defines the payload for registering a feed.
type CreateFeedRequest struct {
	FeedURL          string  `json:"feed_url"          validate:"required,url"`
	TargetLanguage   string  `json:"target_language"   validate:"omitempty,min=2"`
	Name             string  `json:"name"              validate:"omitempty,max=255"`
	MaxPosts         int     `json:"max_posts"         validate:"omitempty,gt=0"`
	TranslateTitle   bool    `json:"translate_title"`
	TranslateContent bool    `json:"translate_content"`
	Summarize        bool    `json:"summarize"`
	SummaryDetail    float64 `json:"summary_detail"    validate:"gte=0,lte=1"`
}

// UpdateFeedRequest defines the payload for updating a feed. Nil fields are
// left unchanged.
type UpdateFeedRequest struct {
	Name             *string  `json:"name"              validate:"omitempty,max=255"`
	TargetLanguage   *string  `json:"target_language"   validate:"omitempty,min=2"`
	MaxPosts         *int     `json:"max_posts"         validate:"omitempty,gt=0"`
	TranslateTitle   *bool    `json:"translate_title"`
	TranslateContent *bool    `json:"translate_content"`
	Summarize        *bool    `json:"summarize"`
	SummaryDetail    *float64 `json:"summary_detail"    validate:"omitempty,gte=0,lte=1"`
}

// UpdateProgressRequest defines the payload for reporting task progress.
type UpdateProgressRequest struct {
	Progress int `json:"progress" validate:"gte=0,lte=100"`
}

// TaskSubmittedResponse acknowledges a submitted background task.
type TaskSubmittedResponse struct {
	TaskName string `json:"task_name"`
}

// TaskListResponse wraps the task records returned by list endpoints.
type TaskListResponse struct {
	Tasks map[string]taskmanager.Record `json:"tasks"`
	Count int                           `json:"count"`
}

// TaskStatsResponse reports task manager counters.
type TaskStatsResponse struct {
	Workers              int      `json:"workers"`
	PoolGeneration       int      `json:"pool_generation"`
	ExecutedSinceRestart int      `json:"executed_since_restart"`
	Pending              int      `json:"pending"`
	Running              int      `json:"running"`
	Completed            int      `json:"completed"`
	Failed               int      `json:"failed"`
	Cancelled            int      `json:"cancelled"`
	RunningTasks         []string `json:"running_tasks"`
	PendingTasks         []string `json:"pending_tasks"`
}

// ClearedTasksResponse reports how many task records were evicted.
type ClearedTasksResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
