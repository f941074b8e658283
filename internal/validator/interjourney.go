package validator

import (
	"fmt"

	"validador/internal/timeutil"
)

// ValidateWithRest validates two shift entries and the rest between
// them: the gap from the last time of the first entry to the first time
// of the second, wrapping past midnight. With saturdayMode the pair is
// checked as a weekday shift plus its Saturday complement and the second
// verdict is replaced by a combined record.
func (v *Validator) ValidateWithRest(tokens1, tokens2 string, saturdayMode bool) (Verdict, Verdict, string) {
	verdict1 := v.Validate(tokens1)
	verdict2 := v.Validate(tokens2)

	// Best-effort rest message, computed even when a validation failed.
	restMessage := ""
	end1, okEnd := timeutil.LastToken(tokens1)
	start2, okStart := timeutil.FirstToken(tokens2)
	if okEnd && okStart {
		restMessage = v.restMessage(timeutil.InterJourneyMinutes(end1, start2))
	}

	if !verdict1.Valid || !verdict2.Valid {
		return verdict1, verdict2, restMessage
	}

	if saturdayMode {
		return v.validateSaturdayPair(verdict1, verdict2, tokens1, tokens2)
	}

	return verdict1, verdict2, restMessage
}

func (v *Validator) restMessage(restMinutes int) string {
	if restMinutes >= v.cfg.MinRestMinutes {
		return fmt.Sprintf("%s Interjornada: %s",
			GlyphSuccess, timeutil.FormatDuration(restMinutes, true))
	}
	return fmt.Sprintf("%s Interjornada insuficiente: %s (mínimo %dh)",
		GlyphError, timeutil.FormatDuration(restMinutes, true), v.cfg.MinRestMinutes/60)
}

// validateSaturdayPair enforces the combined-week rule: an 8h weekday
// shift complemented by a 4h Saturday shift, with the minimum rest
// between Friday's end and Saturday's start.
func (v *Validator) validateSaturdayPair(main, saturday Verdict, tokens1, tokens2 string) (Verdict, Verdict, string) {
	if main.Duration != "08:00" {
		err := errorVerdict(GlyphWarning, "Jornada principal deve ser 8h para modo sábado")
		return main, err, ""
	}
	if saturday.Duration != "04:00" {
		err := errorVerdict(GlyphWarning, "Sábado deve ter exatamente 4 horas")
		return main, err, ""
	}

	end1, _ := timeutil.LastToken(tokens1)
	start2, _ := timeutil.FirstToken(tokens2)
	restMinutes := timeutil.InterJourneyMinutes(end1, start2)
	restOK := restMinutes >= v.cfg.MinRestMinutes

	weekly := main.WeeklyHours + 4
	monthly := weekly * 5

	message := GlyphError + " Jornada Sábado - Interjornada insuficiente"
	if restOK {
		message = GlyphSuccess + " Jornada Sábado - 4h (Complemento 8h diária)"
	}

	combined := Verdict{
		Valid:        restOK,
		Message:      message,
		Duration:     "04:00",
		DayType:      "Sábado",
		Code:         v.lookupCode(tokens2),
		WeeklyHours:  weekly,
		MonthlyHours: monthly,
		Break:        saturday.Break,
	}

	var restMessage string
	if restOK {
		restMessage = fmt.Sprintf("%s Jornada Completa: %dh (Seg-Sex) + 4h (Sáb) = %dh semanais\n%s Interjornada Sexta-Sábado: %s",
			GlyphSuccess, main.WeeklyHours, weekly,
			GlyphSuccess, timeutil.FormatDuration(restMinutes, true))
	} else {
		restMessage = fmt.Sprintf("%s Jornada: %dh (Seg-Sex) + 4h (Sáb) = %dh semanais\n%s Interjornada Sexta-Sábado insuficiente: %s (mínimo %dh)",
			GlyphWarning, main.WeeklyHours, weekly,
			GlyphError, timeutil.FormatDuration(restMinutes, true), v.cfg.MinRestMinutes/60)
	}

	return main, combined, restMessage
}
