package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
)

// programsLockKey identifies the advisory lock taken by writers of programs and registrations.
const programsLockKey = 4_001_725_993

const (
	templateColumns = `id, template_name, duration_days, default_title, default_subtitle, default_description,
	default_prayer_focus, default_instructions, max_participants, created_at`

	programColumns = `p.id, p.program_title, p.program_subtitle, p.description, p.prayer_focus, p.instructions,
	p.start_date, p.end_date, p.registration_open_date, p.registration_close_date, p.max_participants,
	p.program_status, p.is_active, p.template_name, p.created_by, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM fasting_registrations r WHERE r.program_id = p.id) AS current_participants`

	registrationColumns = "id, program_id, user_id, user_email, created_at"
)

type campaignRepository struct {
	store
}

var _ campaign.Repository = (*campaignRepository)(nil) // interface compliance check

func NewCampaignRepository(db *sqlx.DB) campaign.Repository {
	return &campaignRepository{store{db: db}}
}

var campaignConstraints = map[string]error{
	"fasting_event_templates_template_name_key": campaign.ErrTemplateExists,
	"fasting_program_details_active_key":        campaign.ErrAnotherActive,
	"fasting_registrations_program_user_key":    campaign.ErrAlreadyRegistered,
	"fasting_registrations_program_id_fkey":     campaign.ErrNotFound,
}

func (repo *campaignRepository) CreateTemplate(ctx context.Context, t campaign.Template) (campaign.Template, error) {
	var created campaign.Template
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO fasting_event_templates (template_name, duration_days, default_title, default_subtitle,
			default_description, default_prayer_focus, default_instructions, max_participants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+templateColumns,
		t.TemplateName, t.DurationDays, t.DefaultTitle, t.DefaultSubtitle, t.DefaultDescription,
		t.DefaultPrayerFocus, t.DefaultInstructions, t.MaxParticipants, t.CreatedAt,
	)
	return created, translate(err, nil, campaignConstraints)
}

func (repo *campaignRepository) GetTemplateByName(ctx context.Context, name string) (campaign.Template, error) {
	var t campaign.Template
	err := sqlx.GetContext(ctx, repo.exec(ctx), &t, "SELECT "+templateColumns+" FROM fasting_event_templates WHERE template_name = $1", name)
	return t, translate(err, campaign.ErrTemplateNotFound, nil)
}

func (repo *campaignRepository) QueryTemplates(ctx context.Context) ([]campaign.Template, error) {
	items := make([]campaign.Template, 0)
	err := sqlx.SelectContext(ctx, repo.exec(ctx), &items, "SELECT "+templateColumns+" FROM fasting_event_templates ORDER BY template_name")
	return items, err
}

// LockPrograms takes a transaction-scoped advisory lock; outside a transaction it is released at once.
func (repo *campaignRepository) LockPrograms(ctx context.Context) error {
	_, err := repo.exec(ctx).ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", programsLockKey)
	return err
}

func (repo *campaignRepository) GetActiveProgram(ctx context.Context) (campaign.Program, error) {
	var p campaign.Program
	err := sqlx.GetContext(ctx, repo.exec(ctx), &p, "SELECT "+programColumns+" FROM fasting_program_details p WHERE p.is_active")
	return p, translate(err, campaign.ErrNoActiveProgram, nil)
}

func (repo *campaignRepository) GetProgramByID(ctx context.Context, id string) (campaign.Program, error) {
	if _, err := uuid.Parse(id); err != nil {
		return campaign.Program{}, campaign.ErrNotFound
	}
	var p campaign.Program
	err := sqlx.GetContext(ctx, repo.exec(ctx), &p, "SELECT "+programColumns+" FROM fasting_program_details p WHERE p.id = $1", id)
	return p, translate(err, campaign.ErrNotFound, nil)
}

func (repo *campaignRepository) DeactivatePrograms(ctx context.Context, updatedAt time.Time) error {
	_, err := repo.exec(ctx).ExecContext(
		ctx,
		"UPDATE fasting_program_details SET is_active = FALSE, updated_at = $1 WHERE is_active",
		updatedAt,
	)
	return err
}

func (repo *campaignRepository) CreateProgram(ctx context.Context, p campaign.Program) (campaign.Program, error) {
	p.ID = uuid.New().String()
	_, err := repo.exec(ctx).ExecContext(
		ctx,
		`INSERT INTO fasting_program_details (id, program_title, program_subtitle, description, prayer_focus,
			instructions, start_date, end_date, registration_open_date, registration_close_date, max_participants,
			program_status, is_active, template_name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.ProgramTitle, p.ProgramSubtitle, p.Description, p.PrayerFocus, p.Instructions,
		p.StartDate, p.EndDate, p.RegistrationOpenDate, p.RegistrationCloseDate, p.MaxParticipants,
		p.ProgramStatus, p.IsActive, p.TemplateName, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err = translate(err, nil, campaignConstraints); err != nil {
		return campaign.Program{}, err
	}
	p.CurrentParticipants = 0
	return p, nil
}

func (repo *campaignRepository) UpdateProgram(ctx context.Context, p campaign.Program) (campaign.Program, error) {
	res, err := repo.exec(ctx).ExecContext(
		ctx,
		`UPDATE fasting_program_details SET program_title = $2, program_subtitle = $3, description = $4,
			prayer_focus = $5, instructions = $6, start_date = $7, end_date = $8, registration_open_date = $9,
			registration_close_date = $10, max_participants = $11, program_status = $12, is_active = $13,
			updated_at = $14
		WHERE id = $1`,
		p.ID, p.ProgramTitle, p.ProgramSubtitle, p.Description, p.PrayerFocus, p.Instructions,
		p.StartDate, p.EndDate, p.RegistrationOpenDate, p.RegistrationCloseDate, p.MaxParticipants,
		p.ProgramStatus, p.IsActive, p.UpdatedAt,
	)
	if err = translate(err, nil, campaignConstraints); err != nil {
		return campaign.Program{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.Program{}, campaign.ErrNotFound
	}
	return repo.GetProgramByID(ctx, p.ID)
}

func (repo *campaignRepository) CreateRegistration(ctx context.Context, r campaign.Registration) (campaign.Registration, error) {
	r.ID = uuid.New().String()
	var created campaign.Registration
	err := sqlx.GetContext(
		ctx, repo.exec(ctx), &created,
		`INSERT INTO fasting_registrations (id, program_id, user_id, user_email, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+registrationColumns,
		r.ID, r.ProgramID, r.UserID, r.UserEmail, r.CreatedAt,
	)
	return created, translate(err, nil, campaignConstraints)
}

func (repo *campaignRepository) QueryRegistrations(ctx context.Context, programID string) ([]campaign.Registration, error) {
	items := make([]campaign.Registration, 0)
	err := sqlx.SelectContext(
		ctx, repo.exec(ctx), &items,
		"SELECT "+registrationColumns+" FROM fasting_registrations WHERE program_id = $1 ORDER BY created_at, id",
		programID,
	)
	return items, err
}
