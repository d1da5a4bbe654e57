package slot

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Zimbwa03/Global-Intercessors-sub006/core"
)

var (
	timeRangeTag  = "timerange"
	timeRangeText = "{0} must be a half-hour slot like 06:00–06:30"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(timeRangeTag, timeRangeValidation)
	core.RegisterCustomTranslation(validate, translator, timeRangeTag, timeRangeText)
}

func timeRangeValidation(fl validator.FieldLevel) bool {
	_, ok := parseRange(fl.Field().String())
	return ok
}
