// Package cleaning applies the fixed exclusion rules that turn the raw load into the working dataset.
package cleaning

import (
	"github.com/jengzang/reallocation-screener/internal/models"
)

// Rules configures the cleaner
type Rules struct {
	AllowedPrefectures []string
	ExcludedFlags      []string
}

// Cleaner applies region scope, master exclusion and flag exclusion in that order.
// Every rule is a pure filter, so the order only affects the per-rule counts.
type Cleaner struct {
	allowed map[string]bool
	flags   map[string]bool
}

// Result holds the working table and a report of what was removed
type Result struct {
	Table  *models.Table
	Report models.CleaningReport
}

// NewCleaner creates a cleaner from rules
func NewCleaner(rules Rules) *Cleaner {
	return &Cleaner{
		allowed: toSet(rules.AllowedPrefectures),
		flags:   toSet(rules.ExcludedFlags),
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

type rule struct {
	name    string
	applies func(*models.Table) bool
	keep    func(*models.Table) func(*models.Record) bool
}

// Apply runs the rule pipeline. When enabled is false the input table is returned unchanged.
func (c *Cleaner) Apply(table *models.Table, excludeIDs []int64, enabled bool) Result {
	report := models.CleaningReport{
		Enabled: enabled,
		Before:  table.Len(),
	}
	if !enabled {
		report.After = table.Len()
		return Result{Table: table, Report: report}
	}

	excluded := make(map[int64]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	current := table
	for _, r := range c.rules(excluded) {
		if !r.applies(current) {
			report.Steps = append(report.Steps, models.CleaningStep{Rule: r.name, Skipped: true})
			continue
		}
		before := current.Len()
		current = current.Filter(r.keep(current))
		report.Steps = append(report.Steps, models.CleaningStep{Rule: r.name, Removed: before - current.Len()})
	}

	report.After = current.Len()
	report.Excluded = report.Before - report.After
	return Result{Table: current, Report: report}
}

func always(*models.Table) bool { return true }

func (c *Cleaner) rules(excluded map[int64]bool) []rule {
	return []rule{
		{
			// 一都三県 only: each side is checked when its column exists
			name: models.RuleRegionScope,
			applies: func(t *models.Table) bool {
				return t.Has(models.ColOriginPrefecture) || t.Has(models.ColDestPrefecture)
			},
			keep: func(t *models.Table) func(*models.Record) bool {
				checkOrigin := t.Has(models.ColOriginPrefecture)
				checkDest := t.Has(models.ColDestPrefecture)
				return func(r *models.Record) bool {
					if checkOrigin && !c.inScope(r.OriginPrefecture.String, r.OriginPrefecture.Valid) {
						return false
					}
					return !checkDest || c.inScope(r.DestPrefecture.String, r.DestPrefecture.Valid)
				}
			},
		},
		{
			name:    models.RuleMasterExclusion,
			applies: always,
			keep: func(*models.Table) func(*models.Record) bool {
				return func(r *models.Record) bool {
					if r.StartPortID.Valid && excluded[r.StartPortID.Int64] {
						return false
					}
					return !(r.ReturnPortID.Valid && excluded[r.ReturnPortID.Int64])
				}
			},
		},
		{
			// 同じST / NA and missing flags
			name: models.RuleFlagExclusion,
			applies: func(t *models.Table) bool {
				return t.Has(models.ColFlag)
			},
			keep: func(*models.Table) func(*models.Record) bool {
				return func(r *models.Record) bool {
					return r.Flag.Valid && !c.flags[r.Flag.String]
				}
			},
		},
	}
}

func (c *Cleaner) inScope(prefecture string, valid bool) bool {
	return valid && c.allowed[prefecture]
}
