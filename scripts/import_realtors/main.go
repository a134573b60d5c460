package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/homefolio/realtorsites/internal/config"
	"github.com/homefolio/realtorsites/internal/db"
	"github.com/homefolio/realtorsites/internal/models"
	"github.com/homefolio/realtorsites/internal/repository/sqlite"
)

// importRecord is one realtor in the onboarding export, optionally carrying
// testimonials collected during intake.
type importRecord struct {
	ID                       string               `json:"id,omitempty"`
	FirstName                string               `json:"first_name"`
	LastName                 string               `json:"last_name"`
	DisplayName              string               `json:"display_name,omitempty"`
	Title                    string               `json:"title,omitempty"`
	Email                    string               `json:"email,omitempty"`
	Phone                    string               `json:"phone,omitempty"`
	PhotoURL                 string               `json:"photo_url,omitempty"`
	Bio                      string               `json:"bio,omitempty"`
	Tagline                  string               `json:"tagline,omitempty"`
	WebsiteURL               string               `json:"website_url,omitempty"`
	SocialLinks              json.RawMessage      `json:"social_links,omitempty"`
	Specializations          []string             `json:"specializations,omitempty"`
	YearsExperience          int                  `json:"years_experience,omitempty"`
	BrokerageName            string               `json:"brokerage_name,omitempty"`
	PrimaryCity              string               `json:"primary_city"`
	PrimaryProvince          string               `json:"primary_province"`
	CityID                   *string              `json:"city_id,omitempty"`
	IsFeatured               bool                 `json:"is_featured,omitempty"`
	TotalVolume              float64              `json:"total_volume,omitempty"`
	ClientSatisfactionRating float64              `json:"client_satisfaction_rating,omitempty"`
	Testimonials             []models.Testimonial `json:"testimonials,omitempty"`
}

func main() {
	var file = flag.String("file", "", "Path to realtors JSON export")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import_realtors -file <realtors.json>")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	b, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read export error: %v\n", err)
		os.Exit(1)
	}
	var records []importRecord
	if err := json.Unmarshal(b, &records); err != nil {
		fmt.Fprintf(os.Stderr, "Parse export error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	repo := sqlite.New(database, nil)

	imported := 0
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		displayName := rec.DisplayName
		if displayName == "" {
			displayName = rec.FirstName + " " + rec.LastName
		}

		realtor := &models.Realtor{
			ID:                       id,
			FirstName:                rec.FirstName,
			LastName:                 rec.LastName,
			DisplayName:              displayName,
			Title:                    rec.Title,
			Email:                    rec.Email,
			Phone:                    rec.Phone,
			PhotoURL:                 rec.PhotoURL,
			Bio:                      rec.Bio,
			Tagline:                  rec.Tagline,
			WebsiteURL:               rec.WebsiteURL,
			SocialLinks:              rec.SocialLinks,
			Specializations:          rec.Specializations,
			YearsExperience:          rec.YearsExperience,
			BrokerageName:            rec.BrokerageName,
			PrimaryCity:              rec.PrimaryCity,
			PrimaryProvince:          rec.PrimaryProvince,
			CityID:                   rec.CityID,
			IsFeatured:               rec.IsFeatured,
			TotalVolume:              rec.TotalVolume,
			ClientSatisfactionRating: rec.ClientSatisfactionRating,
		}
		if err := repo.CreateRealtor(ctx, realtor); err != nil {
			fmt.Fprintf(os.Stderr, "Import %s %s: %v\n", rec.FirstName, rec.LastName, err)
			continue
		}
		for _, t := range rec.Testimonials {
			t.RealtorID = id
			if _, err := repo.CreateTestimonial(ctx, &t); err != nil {
				fmt.Fprintf(os.Stderr, "Import testimonial for %s: %v\n", id, err)
			}
		}
		imported++
	}

	fmt.Printf("Imported %d of %d realtors.\n", imported, len(records))
}
