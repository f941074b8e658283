// Package validator implements the shift rule engine: it matches time
// token sequences against the configured shift catalog and produces
// structured verdicts with human-readable diagnostics.
package validator

import (
	"fmt"
	"strings"

	"validador/internal/config"
	"validador/internal/metrics"
	"validador/internal/timeutil"
)

// dailyCeilingMinutes is the hard limit for a simple (no-break) shift.
const dailyCeilingMinutes = 600 // 10h

// CodeLookup resolves an organizational code for a normalized time
// pattern. Lookup failures degrade to "no code found"; implementations
// must not block callers indefinitely.
type CodeLookup interface {
	Lookup(key string) (string, bool)
}

// Options selects which rule families the batch flow enforces. The
// interactive flow always enforces all of them.
type Options struct {
	CheckPeriods bool // continuous-period and total-period ceilings
	CheckShift   bool // duration must match a configured shift
	CheckBreaks  bool // break interval within the matched shift's bounds
}

// AllChecks enables every rule family.
func AllChecks() Options {
	return Options{CheckPeriods: true, CheckShift: true, CheckBreaks: true}
}

// Validator applies the rule set to time token sequences. It is
// stateless beyond the shared config and code lookup, both read-only.
type Validator struct {
	cfg   *config.RuleConfig
	codes CodeLookup
}

// New creates a validator over cfg. codes may be nil.
func New(cfg *config.RuleConfig, codes CodeLookup) *Validator {
	return &Validator{cfg: cfg, codes: codes}
}

// mode captures the divergence between the interactive and batch flows:
// error glyph, violation separator and rule leniency. The separator
// difference is kept for compatibility with downstream report parsers.
type mode struct {
	glyph string
	sep   string
	opts  Options
}

var interactiveMode = mode{glyph: GlyphWarning, sep: "\n", opts: AllChecks()}

// Validate validates a whitespace-separated string of 2 or 4 times.
// This is the interactive entry point: strict rule matching,
// newline-joined violations.
func (v *Validator) Validate(input string) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = errorVerdict(GlyphWarning, fmt.Sprintf("Erro na validação: %v", r))
		}
		metrics.IncValidation(verdict.Outcome())
	}()

	if strings.TrimSpace(input) == "" {
		return errorVerdict(GlyphWarning, "Digite os horários")
	}

	tokens := strings.Fields(input)
	switch len(tokens) {
	case 2:
		return v.validateSimple(tokens, input, interactiveMode)
	case 4:
		return v.validateWithBreak(tokens, input, interactiveMode)
	default:
		return errorVerdict(GlyphWarning,
			fmt.Sprintf("Digite 2 ou 4 horários (você digitou %d)", len(tokens)))
	}
}

// ValidateTokens validates an already-split token list. This is the
// batch entry point: blank and "00:00" placeholders are dropped first,
// rule matching follows opts, violations join with " | ".
func (v *Validator) ValidateTokens(tokens []string, opts Options) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = errorVerdict(GlyphError, fmt.Sprintf("Erro na validação: %v", r))
		}
		metrics.IncValidation(verdict.Outcome())
	}()

	batch := mode{glyph: GlyphError, sep: " | ", opts: opts}

	clean := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if t := strings.TrimSpace(tok); t != "" && t != "00:00" {
			clean = append(clean, t)
		}
	}

	if len(clean) == 0 {
		return errorVerdict(GlyphError, "Nenhum horário válido")
	}

	input := strings.Join(clean, " ")
	switch len(clean) {
	case 2:
		return v.validateSimple(clean, input, batch)
	case 4:
		return v.validateWithBreak(clean, input, batch)
	default:
		return errorVerdict(GlyphError,
			fmt.Sprintf("Quantidade inválida de horários: %d", len(clean)))
	}
}

func (v *Validator) validateSimple(tokens []string, input string, m mode) Verdict {
	start, err1 := timeutil.Parse(tokens[0])
	end, err2 := timeutil.Parse(tokens[1])
	if err1 != nil || err2 != nil {
		return errorVerdict(m.glyph, "Formato inválido. Use HH:MM")
	}

	if !start.Before(end) {
		return errorVerdict(m.glyph, "Horário inicial deve ser antes do final")
	}

	duration := timeutil.DurationMinutes(start, end)

	if m.opts.CheckShift {
		if duration > dailyCeilingMinutes {
			return errorVerdict(m.glyph, fmt.Sprintf("Duração (%s) excede limite de 10h",
				timeutil.FormatDuration(duration, false)))
		}

		shift, ok := v.cfg.FindShift(duration)
		if !ok {
			return errorVerdict(m.glyph, fmt.Sprintf("Duração %s não é válida",
				timeutil.FormatDuration(duration, false)))
		}
		if shift.RequiresBreak() {
			return errorVerdict(m.glyph, "Esta jornada requer intervalo. Digite 4 horários")
		}
		return v.successVerdict(&shift, duration, -1, input)
	}

	// Lenient: absence of a matching shift degrades fields, not the verdict.
	if shift, ok := v.cfg.FindShift(duration); ok {
		return v.successVerdict(&shift, duration, -1, input)
	}
	return v.successVerdict(nil, duration, -1, input)
}

func (v *Validator) validateWithBreak(tokens []string, input string, m mode) Verdict {
	times := make([]timeutil.TimeOfDay, 4)
	for i, tok := range tokens {
		t, err := timeutil.Parse(tok)
		if err != nil {
			return errorVerdict(m.glyph, "Formato inválido. Use HH:MM")
		}
		times[i] = t
	}

	if !timeutil.StrictlyIncreasing(times...) {
		return errorVerdict(m.glyph, "Horários devem estar em ordem crescente")
	}

	duration1 := timeutil.DurationMinutes(times[0], times[1])
	breakMin := timeutil.DurationMinutes(times[1], times[2])
	duration2 := timeutil.DurationMinutes(times[2], times[3])
	total := duration1 + duration2

	// Violations accumulate in detection order; nothing short-circuits.
	var violations []string

	if m.opts.CheckPeriods {
		if duration1 > v.cfg.MaxContinuousMinutes {
			violations = append(violations, fmt.Sprintf("Primeiro período (%s) excede %s",
				timeutil.FormatDuration(duration1, false),
				timeutil.FormatDuration(v.cfg.MaxContinuousMinutes, false)))
		}
		if duration2 > v.cfg.MaxContinuousMinutes {
			violations = append(violations, fmt.Sprintf("Segundo período (%s) excede %s",
				timeutil.FormatDuration(duration2, false),
				timeutil.FormatDuration(v.cfg.MaxContinuousMinutes, false)))
		}
		if period := float64(total+breakMin) / 60.0; period > v.cfg.MaxPeriodHours {
			violations = append(violations, fmt.Sprintf("Período total (%.1fh) excede %.1fh",
				period, v.cfg.MaxPeriodHours))
		}
	}

	shift, found := v.cfg.FindShift(total)
	if m.opts.CheckShift && !found {
		violations = append(violations, fmt.Sprintf("Duração %s não é válida",
			timeutil.FormatDuration(total, false)))
	}

	if m.opts.CheckBreaks && found {
		if breakMin < shift.MinBreakMinutes {
			violations = append(violations, fmt.Sprintf("Intervalo insuficiente (%s). Mínimo: %s",
				timeutil.FormatDuration(breakMin, true),
				timeutil.FormatDuration(shift.MinBreakMinutes, true)))
		}
		if shift.MaxBreakMinutes > 0 && breakMin > shift.MaxBreakMinutes {
			violations = append(violations, fmt.Sprintf("Intervalo excessivo (%s). Máximo: %s",
				timeutil.FormatDuration(breakMin, true),
				timeutil.FormatDuration(shift.MaxBreakMinutes, true)))
		}
	}

	if len(violations) > 0 {
		return errorVerdict(m.glyph, strings.Join(violations, m.sep))
	}

	if found {
		return v.successVerdict(&shift, total, breakMin, input)
	}
	return v.successVerdict(nil, total, breakMin, input)
}

func (v *Validator) successVerdict(shift *config.ShiftDefinition, duration, breakMin int, input string) Verdict {
	code := v.lookupCode(input)

	var message string
	if shift != nil {
		message = GlyphSuccess + " " + shift.Name
	} else {
		message = fmt.Sprintf("%s Duração: %s", GlyphSuccess, timeutil.FormatDuration(duration, false))
	}
	if code != "" {
		message += fmt.Sprintf(" (Código: %s)", code)
	}

	verdict := Verdict{
		Valid:    true,
		Message:  message,
		Duration: timeutil.FormatDuration(duration, false),
		DayType:  dayType(duration),
		Code:     code,
	}
	if shift != nil {
		verdict.WeeklyHours = shift.WeeklyHours
		verdict.MonthlyHours = shift.MonthlyHours
	}
	if breakMin >= 0 {
		verdict.Break = timeutil.FormatDuration(breakMin, true)
	}
	return verdict
}

func (v *Validator) lookupCode(input string) string {
	if v.codes == nil {
		return ""
	}
	code, ok := v.codes.Lookup(timeutil.NormalizeKey(input))
	if !ok {
		return ""
	}
	return code
}

// dayType maps a shift duration to the weekday pattern it is used for.
func dayType(durationMinutes int) string {
	switch durationMinutes {
	case 240:
		return "Segunda a Sábado, ou apenas Sábado"
	case 350, 440:
		return "Segunda a Sábado"
	case 480:
		return "Segunda a Sexta-feira"
	default:
		return "Não especificado"
	}
}
