package quota

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type policyKey struct {
	feature Feature
	tier    Tier
}

// PolicyTable is an immutable (feature, tier) -> Policy mapping that is
// complete over AllFeatures() x AllTiers().
type PolicyTable struct {
	policies map[policyKey]Policy
}

// IncompleteTableError lists every problem found while building a table.
type IncompleteTableError struct {
	Missing    []string
	Duplicates []string
	Invalid    []error
}

func (e *IncompleteTableError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing policies: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, "duplicate policies: "+strings.Join(e.Duplicates, ", "))
	}
	for _, err := range e.Invalid {
		parts = append(parts, err.Error())
	}
	return "quota policy table: " + strings.Join(parts, "; ")
}

func (e *IncompleteTableError) Unwrap() error {
	return ErrIncompletePolicyTable
}

// NewPolicyTable validates every policy and the full cross-product. It
// returns an *IncompleteTableError describing all problems at once.
func NewPolicyTable(policies []Policy) (*PolicyTable, error) {
	table := &PolicyTable{policies: make(map[policyKey]Policy, len(policies))}
	report := &IncompleteTableError{}

	for _, p := range policies {
		if err := p.Validate(); err != nil {
			report.Invalid = append(report.Invalid, err)
			continue
		}
		k := policyKey{p.Feature, p.Tier}
		if _, dup := table.policies[k]; dup {
			report.Duplicates = append(report.Duplicates, pairName(p.Feature, p.Tier))
			continue
		}
		table.policies[k] = p
	}

	for _, f := range AllFeatures() {
		for _, t := range AllTiers() {
			if _, ok := table.policies[policyKey{f, t}]; !ok {
				report.Missing = append(report.Missing, pairName(f, t))
			}
		}
	}

	if len(report.Missing) > 0 || len(report.Duplicates) > 0 || len(report.Invalid) > 0 {
		sort.Strings(report.Missing)
		return nil, report
	}
	return table, nil
}

// Lookup returns the policy for a pair. A table built by NewPolicyTable
// covers every valid pair; ErrPolicyNotConfigured is only returned for
// invalid input.
func (t *PolicyTable) Lookup(feature Feature, tier Tier) (Policy, error) {
	p, ok := t.policies[policyKey{feature, tier}]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %s", ErrPolicyNotConfigured, pairName(feature, tier))
	}
	return p, nil
}

// Policies returns all policies sorted by feature then tier.
func (t *PolicyTable) Policies() []Policy {
	out := make([]Policy, 0, len(t.policies))
	for _, p := range t.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Feature != out[j].Feature {
			return out[i].Feature < out[j].Feature
		}
		return out[i].Tier < out[j].Tier
	})
	return out
}

// IsIncomplete reports whether err came from NewPolicyTable validation.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncompletePolicyTable)
}

func pairName(f Feature, t Tier) string {
	return string(f) + "/" + string(t)
}
