package attendance

import (
	"context"
	"sort"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

type (
	// Repository is append-only: records are written once and never updated or deleted.
	Repository interface {
		CreateRecord(ctx context.Context, r Record) (Record, error)
		// FilterRecords returns matching records ordered by date, then creation time.
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		RecordExists(ctx context.Context, userID string, slotID int, date core.Date) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an observation. Several rows for the same (user, slot, date) are kept; see Latest.
func (svc *Service) Record(ctx context.Context, nr NewRecord) (Record, error) {
	r := Record{
		UserID:    nr.UserID,
		SlotID:    nr.SlotID,
		Date:      nr.Date,
		Status:    nr.Status,
		Meeting:   nr.Meeting,
		CreatedAt: core.NowFunc().UTC(),
	}
	return svc.repo.CreateRecord(ctx, r)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	return svc.repo.FilterRecords(ctx, filter)
}

func (svc *Service) Exists(ctx context.Context, userID string, slotID int, date core.Date) (bool, error) {
	return svc.repo.RecordExists(ctx, userID, slotID, date)
}

// Summary computes attendance statistics over the latest record of each occurrence in [from, to].
func (svc *Service) Summary(ctx context.Context, userID string, from, to core.Date) (Summary, error) {
	records, err := svc.repo.FilterRecords(ctx, QueryFilter{UserID: userID, From: from, To: to})
	if err != nil {
		return Summary{}, err
	}
	sum := Summarize(Latest(records))
	sum.UserID = userID
	sum.From = from
	sum.To = to
	return sum, nil
}

type occurrenceKey struct {
	userID string
	slotID int
	date   string
}

// Latest keeps the most recent record of each (user, slot, date) occurrence, ordered by date then slot.
func Latest(records []Record) []Record {
	latest := make(map[occurrenceKey]Record, len(records))
	for _, r := range records {
		key := occurrenceKey{r.UserID, r.SlotID, r.Date.String()}
		cur, ok := latest[key]
		if !ok || r.CreatedAt.After(cur.CreatedAt) || (r.CreatedAt.Equal(cur.CreatedAt) && r.ID > cur.ID) {
			latest[key] = r
		}
	}

	deduped := make([]Record, 0, len(latest))
	for _, r := range latest {
		deduped = append(deduped, r)
	}
	sort.Slice(deduped, func(i, j int) bool {
		if !deduped[i].Date.Equal(deduped[j].Date) {
			return deduped[i].Date.Before(deduped[j].Date.Time)
		}
		if deduped[i].SlotID != deduped[j].SlotID {
			return deduped[i].SlotID < deduped[j].SlotID
		}
		return deduped[i].UserID < deduped[j].UserID
	})
	return deduped
}

// Summarize counts records in order. Skipped records neither break nor extend a streak.
func Summarize(records []Record) Summary {
	var sum Summary
	var streak int
	for _, r := range records {
		switch r.Status {
		case StatusAttended:
			sum.Attended++
			streak++
			if streak > sum.LongestStreak {
				sum.LongestStreak = streak
			}
		case StatusMissed:
			sum.Missed++
			streak = 0
		case StatusSkipped:
			sum.Skipped++
		}
	}
	sum.CurrentStreak = streak
	if counted := sum.Attended + sum.Missed; counted > 0 {
		sum.Rate = float64(sum.Attended) / float64(counted)
	}
	return sum
}
