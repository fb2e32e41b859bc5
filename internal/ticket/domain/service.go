package domain

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id int64) (*Response, error)
	// List returns tickets matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Response, error)
	ListByUser(ctx context.Context, userID string) ([]Response, error)
	UpdateStatus(ctx context.Context, id int64, status TicketStatus) (*Response, error)
}

type CreateRequest struct {
	UserID   string `json:"userId"`
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// ListFilter narrows the admin ticket view. Search matches subject,
// message, user id and the ticket id rendered as text.
type ListFilter struct {
	UserID   string
	TicketID int64
	Subject  string
	Status   TicketStatus
	Search   string
}

const minMessageLen = 10

// ValidationErrors maps a field name to its first failure message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid ticket fields: " + strings.Join(fields, ", ")
}

// Validate checks the fields a ticket must carry before it is filed.
// All failures are reported together.
func (r CreateRequest) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(r.Subject) == "" {
		errs["subject"] = "Subject is required"
	}
	if strings.TrimSpace(r.Category) == "" {
		errs["category"] = "Please select a category"
	}
	message := strings.TrimSpace(r.Message)
	switch {
	case message == "":
		errs["message"] = "Message is required"
	case utf8.RuneCountInString(message) < minMessageLen:
		errs["message"] = "Message must be at least 10 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

var (
	ErrNotFound      = errors.New("ticket_not_found")
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidStatus = errors.New("invalid_ticket_status")
)
