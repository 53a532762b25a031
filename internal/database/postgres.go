package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist.
// Consents and check-ins are append-only: no UPDATE or DELETE statement for
// either table exists anywhere in this codebase.
func InitPostgresTables() error {
	queries := []string{
		// Identities (one row per authenticated account; role is fixed at creation)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email VARCHAR(255) NOT NULL UNIQUE,
			role VARCHAR(20) NOT NULL CHECK (role IN ('participant', 'clinician')),
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Participant profiles (1:1 with participant-role identities, created lazily)
		`CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			display_name VARCHAR(255),
			phone VARCHAR(50),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Clinician profiles (1:1 with clinician-role identities)
		`CREATE TABLE IF NOT EXISTS clinicians (
			id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			organization VARCHAR(255),
			credential_image_path TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Care-team assignments (many-to-many, seeded administratively; the
		// pipeline only reads this table)
		`CREATE TABLE IF NOT EXISTS care_team (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			clinician_id UUID NOT NULL REFERENCES clinicians(id) ON DELETE CASCADE,
			participant_id UUID NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(clinician_id, participant_id)
		)`,

		// Consent records (append-only)
		`CREATE TABLE IF NOT EXISTS consents (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			participant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			accepted BOOLEAN NOT NULL,
			version VARCHAR(50) NOT NULL,
			accepted_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Check-ins (append-only; created_at assigned here so per-participant
		// ordering comes from the database, not from submitting clients)
		`CREATE TABLE IF NOT EXISTS check_ins (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			participant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			mood INTEGER NOT NULL CHECK (mood BETWEEN 1 AND 5),
			sleep_hours DOUBLE PRECISION NOT NULL CHECK (sleep_hours BETWEEN 0 AND 16),
			pain INTEGER NOT NULL CHECK (pain BETWEEN 0 AND 10),
			phq_subscore INTEGER NOT NULL CHECK (phq_subscore BETWEEN 0 AND 6),
			journal_text TEXT NOT NULL DEFAULT '',
			risk_tier VARCHAR(10) NOT NULL CHECK (risk_tier IN ('green', 'amber', 'red')),
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Indexes: reverse care-team lookup is the dashboard/fanout hot path
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_care_team_clinician_id ON care_team(clinician_id)`,
		`CREATE INDEX IF NOT EXISTS idx_care_team_participant_id ON care_team(participant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_consents_participant_id ON consents(participant_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_check_ins_participant_created ON check_ins(participant_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
