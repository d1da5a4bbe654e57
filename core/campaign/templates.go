package campaign

import (
	"context"

	"github.com/pkg/errors"
)

const MonthlyFastTemplate = "Monthly 3-Day Fast"

// DefaultTemplates are the presets every store starts with.
func DefaultTemplates() []NewTemplate {
	return []NewTemplate{
		{
			TemplateName:    MonthlyFastTemplate,
			DurationDays:    3,
			DefaultTitle:    "Global Intercessors 3-Day Fast",
			DefaultSubtitle: "Three days of fasting and prayer for the nations",
			DefaultDescription: "Join intercessors around the world for three days of fasting and prayer " +
				"starting on the last Friday evening of the month.",
			DefaultPrayerFocus:  "Revival, the nations and the persecuted church",
			DefaultInstructions: "Choose a fast you can keep, pray during your slot and break the fast together on the third evening.",
		},
	}
}

// SeedTemplates creates the default templates missing from the store and returns how many were created.
func (svc *Service) SeedTemplates(ctx context.Context) (int, error) {
	var created int
	for _, nt := range DefaultTemplates() {
		_, err := svc.CreateTemplate(ctx, nt)
		switch {
		case err == nil:
			created++
		case errors.Cause(err) == ErrTemplateExists:
		default:
			return created, errors.Wrapf(err, "seeding template %q", nt.TemplateName)
		}
	}
	return created, nil
}
