package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionPlanCreated         = "plan.created"
	ActionPlanUpdated         = "plan.updated"
	ActionPlanDeleted         = "plan.deleted"
	ActionPlanStatusChanged   = "plan.status_changed"
	ActionTicketStatusChanged = "ticket.status_changed"
	ActionSubscriptionCancel  = "subscription.cancelled"
)

// AuditLog records one admin-visible mutation. Rows are append-only.
type AuditLog struct {
	ID        int64          `gorm:"column:id;primaryKey"`
	ActorID   string         `gorm:"column:actor_id;index"`
	Action    string         `gorm:"column:action;index"`
	Entity    string         `gorm:"column:entity"`
	EntityID  string         `gorm:"column:entity_id"`
	Metadata  datatypes.JSON `gorm:"column:metadata"`
	IPAddress string         `gorm:"column:ip_address"`
	UserAgent string         `gorm:"column:user_agent"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }
