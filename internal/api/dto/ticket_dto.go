package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	LocationID  string `json:"location_id"`
}

// TicketResponse is the wire form of a ticket. Display names are filled on reads only.
type TicketResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	CategoryID  string              `json:"category_id"`
	LocationID  string              `json:"location_id"`
	UserID      string              `json:"user_id"`
	AssignedTo  *string             `json:"assigned_to"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	ResolvedAt  *time.Time          `json:"resolved_at"`
	ClosedAt    *time.Time          `json:"closed_at"`

	CategoryName string  `json:"category_name,omitempty"`
	LocationName string  `json:"location_name,omitempty"`
	Building     string  `json:"building,omitempty"`
	FilerName    string  `json:"filer_name,omitempty"`
	FilerEmail   string  `json:"filer_email,omitempty"`
	AssigneeName *string `json:"assignee_name,omitempty"`
}

// TicketDetailResponse is a ticket with the part of its thread the caller may see.
type TicketDetailResponse struct {
	TicketResponse
	Comments []CommentResponse `json:"comments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	Internal   bool      `json:"internal"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name,omitempty"`
}

// CreateCommentRequest payload. Internal is ignored for authors who may not write internal notes.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	Internal bool   `json:"internal"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	Resolution string `json:"resolution"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// TicketStatsResponse holds per-status counts.
type TicketStatsResponse struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

// AdminOverviewResponse is the administrator dashboard payload.
type AdminOverviewResponse struct {
	Stats   TicketStatsResponse `json:"stats"`
	Tickets []TicketResponse    `json:"tickets"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		LocationID:  t.LocationID,
		UserID:      t.UserID,
		AssignedTo:  t.AssignedTo,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		ResolvedAt:  t.ResolvedAt,
		ClosedAt:    t.ClosedAt,
	}
}

// NewTicketViewResponse maps a ticket together with its display names.
func NewTicketViewResponse(v *domain.TicketView) TicketResponse {
	resp := NewTicketResponse(&v.Ticket)
	resp.CategoryName = v.CategoryName
	resp.LocationName = v.LocationName
	resp.Building = v.Building
	resp.FilerName = v.FilerName
	resp.FilerEmail = v.FilerEmail
	resp.AssigneeName = v.AssigneeName
	return resp
}

// NewTicketList maps a slice, never returning nil.
func NewTicketList(tickets []domain.TicketView) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketViewResponse(&tickets[i]))
	}
	return items
}

// NewCommentList maps a slice, never returning nil.
func NewCommentList(comments []domain.CommentView) []CommentResponse {
	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		resp := NewCommentResponse(&comments[i].Comment)
		resp.AuthorName = comments[i].AuthorName
		items = append(items, resp)
	}
	return items
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TicketID:  c.TicketID,
		UserID:    c.UserID,
		Content:   c.Content,
		Internal:  c.Internal,
		CreatedAt: c.CreatedAt,
	}
}

// NewTicketStatsResponse maps domain stats.
func NewTicketStatsResponse(s domain.TicketStats) TicketStatsResponse {
	return TicketStatsResponse{
		Total:      s.Total,
		Open:       s.Open,
		Assigned:   s.Assigned,
		InProgress: s.InProgress,
		Resolved:   s.Resolved,
		Closed:     s.Closed,
	}
}
