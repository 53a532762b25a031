package database

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// Store is the durable-storage collaborator backed by PostgreSQL. It satisfies
// the store interfaces declared by the services package.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- identities ---

// CreateIdentity inserts a users row. Role is immutable after creation.
func (s *Store) CreateIdentity(ctx context.Context, email string, role models.Role, passwordHash string) (*models.Identity, error) {
	var id uuid.UUID
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, role, password_hash)
		VALUES (LOWER($1), $2, $3)
		RETURNING id, created_at
	`, email, role, passwordHash).Scan(&id, &createdAt)
	if err != nil {
		return nil, err
	}
	return &models.Identity{ID: id, Email: email, Role: role, CreatedAt: createdAt}, nil
}

// IdentityByEmail returns the identity and its password hash, or (nil, "", nil)
// when no account exists for the email.
func (s *Store) IdentityByEmail(ctx context.Context, email string) (*models.Identity, string, error) {
	var ident models.Identity
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, role, password_hash, created_at
		FROM users WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&ident.ID, &ident.Email, &ident.Role, &hash, &ident.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return &ident, hash, nil
}

// IdentityByID returns the identity, or (nil, nil) when it does not exist.
func (s *Store) IdentityByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	var ident models.Identity
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, role, created_at FROM users WHERE id = $1
	`, id).Scan(&ident.ID, &ident.Email, &ident.Role, &ident.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

// --- profiles ---

// EnsureParticipantProfile lazily creates the participant profile on first
// authenticated access. Safe to call repeatedly.
func (s *Store) EnsureParticipantProfile(ctx context.Context, id uuid.UUID, displayName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, displayName)
	return err
}

func (s *Store) CreateClinicianProfile(ctx context.Context, id uuid.UUID, name, organization string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinicians (id, name, organization)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, id, name, organization)
	return err
}

func (s *Store) ClinicianByID(ctx context.Context, id uuid.UUID) (*models.Clinician, error) {
	var c models.Clinician
	var organization, credentialPath sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, organization, credential_image_path, created_at
		FROM clinicians WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &organization, &credentialPath, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Organization = organization.String
	c.CredentialImagePath = credentialPath.String
	return &c, nil
}

func (s *Store) SetClinicianCredentialPath(ctx context.Context, id uuid.UUID, path string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE clinicians SET credential_image_path = $2 WHERE id = $1
	`, id, path)
	return err
}

// --- care team ---

// CliniciansFor answers "which clinicians may see participant P".
func (s *Store) CliniciansFor(ctx context.Context, participantID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT clinician_id FROM care_team WHERE participant_id = $1
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ParticipantsFor answers "which participants may clinician C see". Indexed on
// clinician_id; this is the dashboard hot path.
func (s *Store) ParticipantsFor(ctx context.Context, clinicianID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id FROM care_team WHERE clinician_id = $1
	`, clinicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// AssignedParticipants returns the profile rows for a clinician's dashboard
// list, joined with the identity email.
func (s *Store) AssignedParticipants(ctx context.Context, clinicianID uuid.UUID) ([]models.ParticipantOverview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, COALESCE(p.display_name, ''), u.email, p.created_at
		FROM care_team ct
		JOIN participants p ON p.id = ct.participant_id
		JOIN users u ON u.id = p.id
		WHERE ct.clinician_id = $1
		ORDER BY p.created_at
	`, clinicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ParticipantOverview
	for rows.Next() {
		var p models.ParticipantOverview
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Email, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- consents (append-only) ---

func (s *Store) AppendConsent(ctx context.Context, rec *models.ConsentRecord) (*models.ConsentRecord, error) {
	saved := *rec
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO consents (participant_id, accepted, version, accepted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, rec.ParticipantID, rec.Accepted, rec.Version, rec.AcceptedAt).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// EffectiveConsent returns the most recent accepted record, or (nil, nil) when
// the participant has never accepted.
func (s *Store) EffectiveConsent(ctx context.Context, participantID uuid.UUID) (*models.ConsentRecord, error) {
	var rec models.ConsentRecord
	var acceptedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, participant_id, accepted, version, accepted_at, created_at
		FROM consents
		WHERE participant_id = $1 AND accepted = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, participantID).Scan(&rec.ID, &rec.ParticipantID, &rec.Accepted, &rec.Version, &acceptedAt, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.AcceptedAt = acceptedAt.Time
	return &rec, nil
}

// --- check-ins (append-only) ---

// AppendCheckIn inserts a check-in. The id and created_at come back from the
// database so per-participant ordering is assigned at the persistence boundary.
func (s *Store) AppendCheckIn(ctx context.Context, ci *models.CheckIn) (*models.CheckIn, error) {
	saved := *ci
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO check_ins (participant_id, mood, sleep_hours, pain, phq_subscore, journal_text, risk_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, ci.ParticipantID, ci.Mood, ci.SleepHours, ci.Pain, ci.PHQSubscore, ci.JournalText, ci.RiskTier).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListCheckIns returns a participant's history newest-first. A nil before
// starts from the latest entry.
func (s *Store) ListCheckIns(ctx context.Context, participantID uuid.UUID, limit int, before *time.Time) ([]models.CheckIn, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, participant_id, mood, sleep_hours, pain, phq_subscore, journal_text, risk_tier, created_at
		FROM check_ins
		WHERE participant_id = $1`
	args := []interface{}{participantID}
	if before != nil {
		query += ` AND created_at < $2`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CheckIn
	for rows.Next() {
		var ci models.CheckIn
		if err := rows.Scan(&ci.ID, &ci.ParticipantID, &ci.Mood, &ci.SleepHours, &ci.Pain,
			&ci.PHQSubscore, &ci.JournalText, &ci.RiskTier, &ci.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// CountCheckIns returns the total number of check-ins in a participant's
// history.
func (s *Store) CountCheckIns(ctx context.Context, participantID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM check_ins WHERE participant_id = $1
	`, participantID).Scan(&count)
	return count, err
}

func scanIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
