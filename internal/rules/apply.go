package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/logging"
)

// ErrRuleNoMatch indicates a no-op rule under strict application.
var ErrRuleNoMatch = errors.New("rule matched nothing")

// Target is what rules are applied to; *filter.Filter satisfies it.
type Target interface {
	filter.Directives
	ApplyAutoProject() error
	ImplyDirectories() error
	Platform() string
}

// Options controls rule application.
type Options struct {
	// Strict turns include, exclude and rewrite rules that match nothing into errors.
	Strict bool
}

// Result records the outcome of one rule.
type Result struct {
	Directive string
	Index     int
	Matched   bool
	Skipped   bool
}

// Report lists rule outcomes in document order.
type Report struct {
	Results []Result
}

// NoOps returns the applied rules that matched nothing.
func (r *Report) NoOps() []Result {
	var out []Result
	for _, result := range r.Results {
		if !result.Skipped && !result.Matched {
			out = append(out, result)
		}
	}
	return out
}

// Apply runs the rules of doc against target in document order. Rules
// restricted to other platforms are skipped. Errors stop application and
// leave target with the effects of the rules applied so far.
func Apply(ctx context.Context, target Target, doc *Document, opts Options) (*Report, error) {
	logger := logging.Get(ctx)
	report := &Report{Results: make([]Result, 0, len(doc.Rules))}
	platform := target.Platform()

	for i := range doc.Rules {
		rule := &doc.Rules[i]
		result := Result{Index: i + 1, Directive: rule.Directive()}

		if !rule.AppliesTo(platform) {
			result.Skipped = true
			report.Results = append(report.Results, result)
			logger.Debug().
				Int("rule", result.Index).
				Str("directive", result.Directive).
				Strs("platforms", rule.Platforms).
				Msg("Skipping rule for other platform")
			continue
		}

		matched, err := applyRule(target, rule)
		if err != nil {
			return report, fmt.Errorf("rule %d (%s): %w", result.Index, result.Directive, err)
		}
		result.Matched = matched
		report.Results = append(report.Results, result)

		logger.Debug().
			Int("rule", result.Index).
			Str("directive", result.Directive).
			Bool("matched", matched).
			Msg("Applied rule")

		if !matched {
			logger.Warn().
				Int("rule", result.Index).
				Str("directive", result.Directive).
				Msg("Rule matched nothing")
			if opts.Strict {
				return report, fmt.Errorf("rule %d (%s): %w", result.Index, result.Directive, ErrRuleNoMatch)
			}
		}
	}

	return report, nil
}

func applyRule(target Target, rule *Rule) (bool, error) {
	switch rule.Directive() {
	case DirectiveInclude:
		return target.ApplyInclude(rule.Include)
	case DirectiveExclude:
		return target.ApplyExclude(rule.Exclude)
	case DirectiveRewrite:
		return target.ApplyRewrite(rule.Rewrite.Find, rule.Rewrite.Replace)
	case DirectiveMap:
		return true, target.AddManualMapping(rule.Map.Source, rule.Map.Destination)
	case DirectiveAutoProject:
		return true, target.ApplyAutoProject()
	case DirectiveImplyDirectories:
		return true, target.ImplyDirectories()
	default:
		return false, fmt.Errorf("%w: no directive", ErrInvalidRule)
	}
}
