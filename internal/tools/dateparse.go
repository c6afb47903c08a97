package tools

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
)

var (
	inDaysPattern  = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksPattern = regexp.MustCompile(`^in (\d+) weeks?$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDate resolves natural-language date expressions to concrete dates.
// Pure computation, no provider, no authorization.
type ParseDate struct {
	now func() time.Time
}

func NewParseDate(now func() time.Time) *ParseDate {
	return &ParseDate{now: now}
}

func (t *ParseDate) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "parse_date",
		Description: "Resolve a natural-language date expression (\"tomorrow\", \"next friday\", \"in 3 days\", \"2026-09-01\") to a concrete date.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "The date expression to resolve",
				},
			},
			"required":             []any{"expression"},
			"additionalProperties": false,
		},
	}
}

func (t *ParseDate) Execute(_ context.Context, _ string, args map[string]any) tool.Result {
	expr := strings.ToLower(strings.TrimSpace(stringArg(args, "expression")))
	today := t.now().Truncate(24 * time.Hour)

	resolved, ok := resolveExpression(expr, today)
	if !ok {
		return tool.Failf(tool.ErrProviderError, "could not understand date expression %q", expr)
	}

	return tool.Succeed(map[string]any{
		"date":            resolved.Format("2006-01-02"),
		"weekday":         resolved.Weekday().String(),
		"days_from_today": int(resolved.Sub(today).Hours() / 24),
	})
}

func resolveExpression(expr string, today time.Time) (time.Time, bool) {
	switch expr {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "next week":
		return today.AddDate(0, 0, 7), true
	}

	if m := inDaysPattern.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, n), true
	}
	if m := inWeeksPattern.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, 7*n), true
	}

	// "friday" / "next friday" — the next occurrence, never today.
	name := strings.TrimPrefix(expr, "next ")
	if wd, ok := weekdays[name]; ok {
		delta := (int(wd) - int(today.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, delta), true
	}

	if d, err := time.Parse("2006-01-02", expr); err == nil {
		return d, true
	}
	return time.Time{}, false
}
