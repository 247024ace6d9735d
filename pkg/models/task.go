package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	Syncable

	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:varchar(1000)" json:"description"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:medium" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:todo" json:"status"`

	// Store-local foreign keys, remapped through external ids at
	// replication time.
	AssigneeID *uint `gorm:"index" json:"assignee_id,omitempty"`
	CompanyID  *uint `gorm:"index" json:"company_id,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

func (Task) Kind() string {
	return KindTask
}
