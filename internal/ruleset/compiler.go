// Package ruleset compiles stored classification rules into matchers.
package ruleset

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jcgiron/centavo/internal/model"
)

// CompiledRule pairs a stored rule with its ready-to-run matcher.
type CompiledRule struct {
	re   *regexp.Regexp
	Rule model.Rule
}

// Matches reports whether the rule's criterion matches the description.
func (c *CompiledRule) Matches(description string) bool {
	return c.re.MatchString(description)
}

// Set holds the compiled rules of one classification pass, includes in stored
// order and excludes grouped for the per-merchant veto check.
type Set struct {
	excludesByMerchant map[int64][]CompiledRule
	Includes           []CompiledRule
}

// Compile builds a fresh matcher set from stored rules. Plain criteria are
// matched case-insensitively as substrings; a leading `=` pins the whole
// description. A criterion with `*` wildcards anchors at the start of the
// description, so `AMAZON*` takes "AMAZON MARKETPLACE" but not "MY AMAZON
// BILL". Blank criteria and criteria that fail to compile are skipped, never
// fatal, so one bad rule cannot stall a classification pass.
func Compile(rules []model.Rule) *Set {
	set := &Set{
		excludesByMerchant: make(map[int64][]CompiledRule),
	}

	for _, rule := range rules {
		criterion := strings.TrimSpace(rule.Criterion)
		if criterion == "" {
			continue
		}

		re, err := compileCriterion(criterion)
		if err != nil {
			slog.Warn("skipping uncompilable rule",
				"rule_id", rule.ID,
				"criterion", rule.Criterion,
				"error", err)
			continue
		}

		compiled := CompiledRule{Rule: rule, re: re}
		switch rule.Kind {
		case model.RuleExclude:
			set.excludesByMerchant[rule.MerchantID] = append(set.excludesByMerchant[rule.MerchantID], compiled)
		default:
			set.Includes = append(set.Includes, compiled)
		}
	}

	return set
}

// Vetoed reports whether any of the merchant's own exclude rules match the
// description. Excludes never suppress matches for other merchants.
func (s *Set) Vetoed(merchantID int64, description string) bool {
	for _, exclude := range s.excludesByMerchant[merchantID] {
		if exclude.Matches(description) {
			return true
		}
	}
	return false
}

func compileCriterion(criterion string) (*regexp.Regexp, error) {
	if exact, ok := strings.CutPrefix(criterion, "="); ok {
		return regexp.Compile(`(?i)^` + regexp.QuoteMeta(exact) + `$`)
	}

	pattern := regexp.QuoteMeta(criterion)
	if strings.Contains(criterion, "*") {
		// The wildcard only frees the suffix after the literal prefix.
		pattern = `^` + strings.ReplaceAll(pattern, `\*`, `.*`)
	}
	return regexp.Compile(`(?i)` + pattern)
}
