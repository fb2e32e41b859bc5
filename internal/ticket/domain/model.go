package domain

import "time"

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

const (
	CategoryBilling   = "billing"
	CategoryTechnical = "technical"
	CategoryAccount   = "account"
	CategoryGeneral   = "general"
)

// Ticket is a support request raised from the portal.
type Ticket struct {
	ID        int64        `gorm:"column:id;primaryKey"`
	UserID    string       `gorm:"column:user_id;index"`
	Subject   string       `gorm:"column:subject"`
	Category  string       `gorm:"column:category"`
	Message   string       `gorm:"column:message"`
	Status    TicketStatus `gorm:"column:status"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at"`
}

func (Ticket) TableName() string { return "support_tickets" }

type Response struct {
	ID        int64     `json:"ticketId"`
	UserID    string    `json:"userId"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Ticket) Response() Response {
	return Response{
		ID:        t.ID,
		UserID:    t.UserID,
		Subject:   t.Subject,
		Category:  t.Category,
		Message:   t.Message,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
