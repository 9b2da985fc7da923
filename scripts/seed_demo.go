package main

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/hireflowdev/interview-assistant/internal/domain/entities"
	"github.com/hireflowdev/interview-assistant/pkg/config"
	pkgjwt "github.com/hireflowdev/interview-assistant/pkg/jwt"
)

// seedDemoInterview creates an active interview with questions, a demo
// applicant and a signed invite so the capture flow can be exercised
// end to end against a local deployment.
func seedDemoInterview(db *gorm.DB, cfg *config.Config) error {
	log.Println("🚀 Seeding demo interview...")

	jwtManager := pkgjwt.NewManager(
		cfg.JWT.InviteSecret,
		cfg.JWT.SessionSecret,
		cfg.JWT.InviteExpiry,
		cfg.JWT.SessionExpiry,
	)

	log.Println("🗑️  Cleaning up existing demo data...")
	db.Where("applicant_id IN (SELECT id FROM applicants WHERE email LIKE ?)", "%@demo.local").Delete(&entities.InterviewInvite{})
	db.Where("email LIKE ?", "%@demo.local").Delete(&entities.Applicant{})
	db.Where("interview_id IN (SELECT id FROM interviews WHERE title LIKE ?)", "Demo:%").Delete(&entities.InterviewQuestion{})
	db.Where("title LIKE ?", "Demo:%").Delete(&entities.Interview{})

	interview := entities.NewInterview("Demo: Backend Engineer Screen", "demo_submissions")
	if err := db.Create(interview).Error; err != nil {
		return fmt.Errorf("create interview: %w", err)
	}

	prompts := []string{
		"Walk me through a recent project where you owned the backend from design to production.",
		"Describe a production incident you debugged. What was the root cause and what changed afterwards?",
		"How would you add rate limiting to a public API? Discuss the trade-offs of your approach.",
	}
	for i, prompt := range prompts {
		question := entities.NewInterviewQuestion(interview.ID, i, prompt)
		if err := db.Create(question).Error; err != nil {
			return fmt.Errorf("create question %d: %w", i, err)
		}
	}

	interview.Activate()
	if err := db.Save(interview).Error; err != nil {
		return fmt.Errorf("activate interview: %w", err)
	}

	applicant := entities.NewApplicant("Taylor Vu", "taylor@demo.local")
	if err := db.Create(applicant).Error; err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}

	token, jti, err := jwtManager.GenerateInviteToken(applicant.ID, interview.ID)
	if err != nil {
		return fmt.Errorf("generate invite token: %w", err)
	}

	tokenHash, err := jwtManager.HashToken(token)
	if err != nil {
		return fmt.Errorf("hash invite token: %w", err)
	}

	expiresAt := time.Now().Add(jwtManager.GetInviteExpiry())
	invite := entities.NewInterviewInvite(interview.ID, applicant.ID, jti, tokenHash, expiresAt)
	if err := db.Create(invite).Error; err != nil {
		return fmt.Errorf("create invite: %w", err)
	}

	fmt.Printf("═══════════════════════════════════════════════════════════════\n")
	fmt.Printf("🟢 Demo interview: %s\n", interview.Title)
	fmt.Printf("═══════════════════════════════════════════════════════════════\n")
	fmt.Printf("Interview ID: %s\n", interview.ID)
	fmt.Printf("Applicant:    %s <%s>\n", applicant.FullName, applicant.Email)
	fmt.Printf("Invite ID:    %s\n", invite.ID)
	fmt.Printf("Expires At:   %s\n", expiresAt.Format(time.RFC3339))
	fmt.Printf("\n📋 Invite Token (Copy to your HTTP client):\n")
	fmt.Printf("%s\n", token)
	fmt.Printf("───────────────────────────────────────────────────────────────\n\n")

	log.Println("✅ Demo data seeded successfully!")
	log.Println("\n💡 Usage:")
	log.Println("   1. Copy the Invite Token above")
	log.Println(`   2. POST /v1/capture/begin with body: {"token": "<invite_token>"}`)
	log.Println("   3. The response carries the session token and LiveKit credentials")
	log.Println("   4. Token expiry:", cfg.JWT.InviteExpiry)
	log.Println("\n🧹 To clean up demo data, re-run with -seed (it deletes before inserting)")

	return nil
}
