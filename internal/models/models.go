package models

import "encoding/json"

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
}

type Realtor struct {
	ID                       string          `json:"id" db:"id"`
	FirstName                string          `json:"first_name" db:"first_name"`
	LastName                 string          `json:"last_name" db:"last_name"`
	DisplayName              string          `json:"display_name" db:"display_name"`
	Title                    string          `json:"title,omitempty" db:"title"`
	Email                    string          `json:"email,omitempty" db:"email"`
	Phone                    string          `json:"phone,omitempty" db:"phone"`
	PhotoURL                 string          `json:"photo_url,omitempty" db:"photo_url"`
	Bio                      string          `json:"bio,omitempty" db:"bio"`
	Tagline                  string          `json:"tagline,omitempty" db:"tagline"`
	WebsiteURL               string          `json:"website_url,omitempty" db:"website_url"`
	SocialLinks              json.RawMessage `json:"social_links,omitempty" db:"social_links"`
	Specializations          []string        `json:"specializations,omitempty" db:"specializations"`
	YearsExperience          int             `json:"years_experience" db:"years_experience"`
	BrokerageName            string          `json:"brokerage_name,omitempty" db:"brokerage_name"`
	PrimaryCity              string          `json:"primary_city" db:"primary_city"`
	PrimaryProvince          string          `json:"primary_province" db:"primary_province"`
	CityID                   *string         `json:"city_id,omitempty" db:"city_id"`
	IsFeatured               bool            `json:"is_featured" db:"is_featured"`
	TotalVolume              float64         `json:"total_volume" db:"total_volume"`
	ClientSatisfactionRating float64         `json:"client_satisfaction_rating" db:"client_satisfaction_rating"`
	IsClaimed                bool            `json:"is_claimed" db:"is_claimed"`
	ClaimedByUserID          *int64          `json:"claimed_by_user_id,omitempty" db:"claimed_by_user_id"`
	Created                  int64           `json:"created" db:"created"`
	Updated                  int64           `json:"updated" db:"updated"`
}

// ClaimStatus values for RealtorClaim.Status. The only transition is
// pending -> verified; expiry is computed from submitted_at, never stored.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusVerified = "verified"
)

type RealtorClaim struct {
	ID               int64           `json:"id" db:"id"`
	RealtorID        string          `json:"realtor_id" db:"realtor_id"`
	UserID           int64           `json:"user_id" db:"user_id"`
	ClaimToken       string          `json:"-" db:"claim_token"`
	SubmittedEmail   string          `json:"submitted_email" db:"submitted_email"`
	SubmittedPhone   string          `json:"submitted_phone,omitempty" db:"submitted_phone"`
	VerificationInfo json.RawMessage `json:"verification_info,omitempty" db:"verification_info"`
	Status           string          `json:"status" db:"status"`
	SubmittedAt      int64           `json:"submitted_at" db:"submitted_at"`
	VerifiedAt       *int64          `json:"verified_at,omitempty" db:"verified_at"`
}

// RealtorRef is the minimal realtor projection joined onto claim reads.
type RealtorRef struct {
	ID              string `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PrimaryCity     string `json:"primary_city"`
	PrimaryProvince string `json:"primary_province"`
	IsClaimed       bool   `json:"-"`
}

type ClaimWithRealtor struct {
	RealtorClaim
	Realtor RealtorRef `json:"realtor"`
}

// ClaimVerification is the result of a successful verify transition.
type ClaimVerification struct {
	ClaimID     int64
	RealtorID   string
	RealtorName string
	UserID      int64
}

type Testimonial struct {
	ID             int64  `json:"id" db:"id"`
	RealtorID      string `json:"realtor_id" db:"realtor_id"`
	ClientName     string `json:"client_name" db:"client_name"`
	ClientLocation string `json:"client_location,omitempty" db:"client_location"`
	Text           string `json:"text" db:"text"`
	Rating         int    `json:"rating" db:"rating"`
	Date           string `json:"date,omitempty" db:"date"`
	IsFeatured     bool   `json:"is_featured" db:"is_featured"`
	DisplayOrder   int    `json:"display_order" db:"display_order"`
}

type City struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Province    string   `json:"province" db:"province"`
	Slug        string   `json:"slug" db:"slug"`
	Population  *int64   `json:"population,omitempty" db:"population"`
	Latitude    *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64 `json:"longitude,omitempty" db:"longitude"`
	GmapsURL    string   `json:"gmaps_url,omitempty" db:"gmaps_url"`
	NotableFact string   `json:"notable_fact,omitempty" db:"notable_fact"`
}
