package models

import (
	"time"
)

// Identity is a record in the external auth directory. It is read-mostly here.
type Identity struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email"`
	Metadata map[string]interface{} `json:"user_metadata"`
}

// Profile holds the structure for the user_profiles collection, one per identity
type Profile struct {
	ID                 string                 `json:"id" bson:"_id"`
	UserID             string                 `json:"user_id" bson:"user_id"`
	FullName           string                 `json:"full_name" bson:"full_name"`
	PreferredName      string                 `json:"preferred_name" bson:"preferred_name"`
	WorkDescription    string                 `json:"work_description" bson:"work_description"`
	PersonalReferences *string                `json:"personal_references" bson:"personal_references,omitempty"`
	AvatarURL          *string                `json:"avatar_url" bson:"avatar_url,omitempty"`
	ReferralSource     *string                `json:"referral_source" bson:"referral_source,omitempty"`
	ConsentGiven       *bool                  `json:"consent_given" bson:"consent_given,omitempty"`
	ConsentDate        *time.Time             `json:"consent_date" bson:"consent_date,omitempty"`
	Metadata           map[string]interface{} `json:"metadata" bson:"metadata"`
	PlanType           string                 `json:"plan_type" bson:"plan_type"`
	AccountType        string                 `json:"account_type" bson:"account_type"`
	CreatedAt          time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at" bson:"updated_at"`
}

// UserProfileResponse is a profile joined with the email from the identity directory
type UserProfileResponse struct {
	Profile
	Email string `json:"email"`
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Email           string                 `json:"email" validate:"required,email"`
	Password        string                 `json:"password" validate:"required,min=8"`
	FullName        string                 `json:"full_name" validate:"required"`
	PreferredName   *string                `json:"preferred_name"`
	WorkDescription *string                `json:"work_description"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// BulkDeleteUsersRequest is the body of POST /users/bulk-delete
type BulkDeleteUsersRequest struct {
	UserIDs []string `json:"user_ids" validate:"min=1,dive,required"`
}

// FetchEmailsRequest is the body of POST /users/fetch-emails
type FetchEmailsRequest struct {
	UserIDs []string `json:"userIds"`
}

// UserEmail is one entry of the fetch-emails response
type UserEmail struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// ResolvedName is the display name and email derived for an identity id
type ResolvedName struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}
