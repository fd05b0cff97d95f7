package models

import (
	"time"
)

// InviteCode represents the structure of an invite code document in the invite_codes collection
type InviteCode struct {
	ID             string     `json:"id" bson:"_id"`
	Code           string     `json:"code" bson:"code" index:"unique"`
	IsUsed         bool       `json:"is_used" bson:"is_used"`
	UsedBy         *string    `json:"used_by" bson:"used_by"`
	UsedAt         *time.Time `json:"used_at" bson:"used_at"`
	MaxUses        int        `json:"max_uses" bson:"max_uses"`
	CurrentUses    int        `json:"current_uses" bson:"current_uses"`
	ExpiresAt      *time.Time `json:"expires_at" bson:"expires_at"`
	EmailSentTo    []string   `json:"email_sent_to" bson:"email_sent_to"`
	ReminderSentAt *time.Time `json:"reminder_sent_at" bson:"reminder_sent_at"`
	IsArchived     bool       `json:"is_archived" bson:"is_archived"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

// GenerateInviteCodesRequest is the body of POST /invite-codes/generate.
// An omitted field takes its default; an explicit value must be in range.
type GenerateInviteCodesRequest struct {
	Count         *int `json:"count" validate:"omitempty,min=1,max=100"`
	MaxUses       *int `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresInDays *int `json:"expires_in_days" validate:"omitempty,min=1,max=365"`
}

// BulkDeleteInviteCodesRequest is the body of POST /invite-codes/bulk-delete
type BulkDeleteInviteCodesRequest struct {
	CodeIDs []string `json:"code_ids" validate:"min=1,dive,required"`
}

// InviteCodeIDRequest is the body of the archive and unarchive endpoints
type InviteCodeIDRequest struct {
	CodeID string `json:"code_id" validate:"required"`
}
