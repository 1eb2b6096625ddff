package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ozziework/internal/domain/auth"
	"ozziework/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, auth.RoleAdmin, "Ozzie", "Admin"); err != nil {
		return err
	}

	if cfg.SeedDemoData {
		return seedDemoData(ctx, pool)
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, role, firstName, lastName string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role, first_name, last_name)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, email, hash, role, firstName, lastName).Scan(&id)
}

// seedDemoData provisions a small employer/traveller pair with one open
// application so a fresh install can exercise the offer-to-payslip flow.
func seedDemoData(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureUser(ctx, pool, "employer@demo.ozziework.example", "Employer123!", auth.RoleEmployer, "Harriet", "Grove"); err != nil {
		return err
	}
	if err := ensureUser(ctx, pool, "traveller@demo.ozziework.example", "Traveller123!", auth.RoleTraveller, "Liam", "Walker"); err != nil {
		return err
	}

	var employerUserID, travellerID string
	if err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", "employer@demo.ozziework.example").Scan(&employerUserID); err != nil {
		return err
	}
	if err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", "traveller@demo.ozziework.example").Scan(&travellerID); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
    UPDATE users SET
      address_street = '12 Harvest Rd', address_city = 'Mildura', address_state = 'VIC', address_postcode = '3500',
      bank_name = 'Demo Mutual', bank_bsb = '083-123', bank_account_number = '12345678', tfn = '123456782'
    WHERE id IN ($1, $2)
  `, employerUserID, travellerID); err != nil {
		return err
	}

	var employerID string
	err := pool.QueryRow(ctx, "SELECT id FROM employers WHERE user_id = $1", employerUserID).Scan(&employerID)
	if err != nil {
		if err := pool.QueryRow(ctx, `
      INSERT INTO employers (user_id, company_name, abn)
      VALUES ($1, 'Grove Orchards', '51824753556')
      RETURNING id
    `, employerUserID).Scan(&employerID); err != nil {
			return err
		}
	}

	var jobID string
	err = pool.QueryRow(ctx, "SELECT id FROM jobs WHERE employer_id = $1 AND title = $2", employerID, "Seasonal fruit picking").Scan(&jobID)
	if err != nil {
		if err := pool.QueryRow(ctx, `
      INSERT INTO jobs (employer_id, title, status)
      VALUES ($1, 'Seasonal fruit picking', 'open')
      RETURNING id
    `, employerID).Scan(&jobID); err != nil {
			return err
		}
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO applications (job_id, applicant_id, cover_letter, status)
    VALUES ($1, $2, 'Keen to start right away.', 'submitted')
    ON CONFLICT (job_id, applicant_id) DO NOTHING
  `, jobID, travellerID)
	return err
}
