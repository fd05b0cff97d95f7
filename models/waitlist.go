package models

import (
	"time"
)

// WaitlistEntry holds the structure for the waitlist collection
type WaitlistEntry struct {
	ID                  string     `json:"id" bson:"_id"`
	FullName            string     `json:"full_name" bson:"full_name"`
	Email               string     `json:"email" bson:"email"`
	Company             *string    `json:"company" bson:"company,omitempty"`
	PhoneNumber         string     `json:"phone_number" bson:"phone_number"`
	CountryCode         string     `json:"country_code" bson:"country_code"`
	Reference           *string    `json:"reference" bson:"reference,omitempty"`
	ReferralSource      *string    `json:"referral_source" bson:"referral_source,omitempty"`
	ReferralSourceOther *string    `json:"referral_source_other" bson:"referral_source_other,omitempty"`
	UserAgent           *string    `json:"user_agent" bson:"user_agent,omitempty"`
	IPAddress           *string    `json:"ip_address" bson:"ip_address,omitempty"`
	JoinedAt            time.Time  `json:"joined_at" bson:"joined_at"`
	NotifiedAt          *time.Time `json:"notified_at" bson:"notified_at,omitempty"`
	IsNotified          bool       `json:"is_notified" bson:"is_notified"`
	IsArchived          bool       `json:"is_archived" bson:"is_archived"`
}

// ArchiveWaitlistRequest is the body of POST /waitlist/archive.
// An empty list archives every notified entry.
type ArchiveWaitlistRequest struct {
	UserIDs []string `json:"user_ids"`
}
