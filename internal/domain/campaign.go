package domain

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted   TaskStatus = "NotStarted"
	TaskStatusVerification TaskStatus = "Verification"
	TaskStatusCompleted    TaskStatus = "Completed"
)

type Campaign struct {
	ID   string
	Name string
}

type CampaignLists struct {
	Special []Campaign
	Normal  []Campaign
}

// Ordered returns special campaigns first, then normal ones.
func (l CampaignLists) Ordered() []Campaign {
	out := make([]Campaign, 0, len(l.Special)+len(l.Normal))
	out = append(out, l.Special...)
	return append(out, l.Normal...)
}

type Task struct {
	ID     string
	Name   string
	Status TaskStatus
}

type TaskDetail struct {
	ID                      string
	Name                    string
	Status                  TaskStatus
	UserTaskID              string
	VerificationAvailableAt time.Time
}

const minVerificationDelay = time.Second

// VerificationDelay is the wait before a task under verification can be
// completed. Deadlines already in the past collapse to one second.
func VerificationDelay(availableAt, now time.Time) time.Duration {
	delay := availableAt.Sub(now)
	if delay < 0 {
		return minVerificationDelay
	}
	return delay
}
