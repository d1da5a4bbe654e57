package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core/campaign"
)

type campaignRepository struct {
	db *DB
}

var _ campaign.Repository = (*campaignRepository)(nil)

func NewCampaignRepository(db *DB) campaign.Repository {
	return &campaignRepository{db: db}
}

func (repo *campaignRepository) CreateTemplate(ctx context.Context, t campaign.Template) (campaign.Template, error) {
	defer repo.db.lock(ctx)()

	if _, ok := repo.db.t.templates[t.TemplateName]; ok {
		return campaign.Template{}, campaign.ErrTemplateExists
	}
	repo.db.t.templateSeq++
	t.ID = repo.db.t.templateSeq
	repo.db.t.templates[t.TemplateName] = t
	return t, nil
}

func (repo *campaignRepository) GetTemplateByName(_ context.Context, name string) (campaign.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.t.templates[name]; ok {
		return t, nil
	}
	return campaign.Template{}, campaign.ErrTemplateNotFound
}

func (repo *campaignRepository) QueryTemplates(_ context.Context) ([]campaign.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]campaign.Template, 0, len(repo.db.t.templates))
	for _, t := range repo.db.t.templates {
		items = append(items, t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].TemplateName < items[j].TemplateName })
	return items, nil
}

// LockPrograms is a no-op: transactions already run one at a time.
func (repo *campaignRepository) LockPrograms(_ context.Context) error {
	return nil
}

// withParticipants must be called with the read lock held.
func (repo *campaignRepository) withParticipants(p campaign.Program) campaign.Program {
	var n int
	for _, r := range repo.db.t.registrations {
		if r.ProgramID == p.ID {
			n++
		}
	}
	p.CurrentParticipants = n
	return p
}

func (repo *campaignRepository) GetActiveProgram(_ context.Context) (campaign.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, p := range repo.db.t.programs {
		if p.IsActive {
			return repo.withParticipants(p), nil
		}
	}
	return campaign.Program{}, campaign.ErrNoActiveProgram
}

func (repo *campaignRepository) GetProgramByID(_ context.Context, id string) (campaign.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.t.programs[id]; ok {
		return repo.withParticipants(p), nil
	}
	return campaign.Program{}, campaign.ErrNotFound
}

func (repo *campaignRepository) DeactivatePrograms(ctx context.Context, updatedAt time.Time) error {
	defer repo.db.lock(ctx)()

	for id, p := range repo.db.t.programs {
		if p.IsActive {
			p.IsActive = false
			p.UpdatedAt = updatedAt
			repo.db.t.programs[id] = p
		}
	}
	return nil
}

func (repo *campaignRepository) CreateProgram(ctx context.Context, p campaign.Program) (campaign.Program, error) {
	defer repo.db.lock(ctx)()

	if p.IsActive {
		for _, other := range repo.db.t.programs {
			if other.IsActive {
				return campaign.Program{}, campaign.ErrAnotherActive
			}
		}
	}
	p.ID = uuid.New().String()
	p.CurrentParticipants = 0
	repo.db.t.programs[p.ID] = p
	return p, nil
}

func (repo *campaignRepository) UpdateProgram(ctx context.Context, p campaign.Program) (campaign.Program, error) {
	defer repo.db.lock(ctx)()

	if _, ok := repo.db.t.programs[p.ID]; !ok {
		return campaign.Program{}, campaign.ErrNotFound
	}
	if p.IsActive {
		for id, other := range repo.db.t.programs {
			if id != p.ID && other.IsActive {
				return campaign.Program{}, campaign.ErrAnotherActive
			}
		}
	}
	repo.db.t.programs[p.ID] = p
	return repo.withParticipants(p), nil
}

func (repo *campaignRepository) CreateRegistration(ctx context.Context, r campaign.Registration) (campaign.Registration, error) {
	defer repo.db.lock(ctx)()

	for _, other := range repo.db.t.registrations {
		if other.ProgramID == r.ProgramID && other.UserID == r.UserID {
			return campaign.Registration{}, campaign.ErrAlreadyRegistered
		}
	}
	r.ID = uuid.New().String()
	repo.db.t.registrations = append(repo.db.t.registrations, r)
	return r, nil
}

func (repo *campaignRepository) QueryRegistrations(_ context.Context, programID string) ([]campaign.Registration, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]campaign.Registration, 0)
	for _, r := range repo.db.t.registrations {
		if r.ProgramID == programID {
			items = append(items, r)
		}
	}
	return items, nil
}
