// Package quotaconfig loads the quota policy and grant tables, either the
// compiled-in defaults or an operator supplied YAML file.
package quotaconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/applytrack/applytrack/internal/domain/allowance"
	"github.com/applytrack/applytrack/internal/domain/quota"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
)

const unlimitedGrant = "unlimited"

// Tables is the validated result of loading.
type Tables struct {
	Policies *quota.PolicyTable
	Grants   *allowance.GrantTable
}

type fileFormat struct {
	Policies []policyEntry                `yaml:"policies"`
	Grants   map[string]map[string]string `yaml:"grants"`
}

type policyEntry struct {
	Feature    string `yaml:"feature"`
	Tier       string `yaml:"tier"`
	Limit      int    `yaml:"limit"`
	Window     string `yaml:"window"`
	WindowType string `yaml:"window_type"`
}

// Load returns the defaults when path is empty. A file replaces the whole
// policy list; an omitted grants section keeps the default grants.
func Load(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return build(quota.DefaultPolicies(), allowance.DefaultGrants())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError("failed to read quota policy file", err.Error())
	}
	return Parse(data)
}

func Parse(data []byte) (*Tables, error) {
	var file fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, apperrors.NewConfigurationError("failed to parse quota policy file", err.Error())
	}

	policies := make([]quota.Policy, 0, len(file.Policies))
	var problems []string
	for i, entry := range file.Policies {
		p, err := entry.toPolicy()
		if err != nil {
			problems = append(problems, fmt.Sprintf("policies[%d]: %v", i, err))
			continue
		}
		policies = append(policies, p)
	}

	grants := allowance.DefaultGrants()
	if file.Grants != nil {
		grants = make(map[quota.Feature]map[quota.Tier]allowance.Grant, len(file.Grants))
		for rawFeature, byTier := range file.Grants {
			f, err := quota.ParseFeature(rawFeature)
			if err != nil {
				problems = append(problems, fmt.Sprintf("grants.%s: %v", rawFeature, err))
				continue
			}
			grants[f] = make(map[quota.Tier]allowance.Grant, len(byTier))
			for rawTier, rawGrant := range byTier {
				tier := quota.Tier(strings.ToLower(strings.TrimSpace(rawTier)))
				if !tier.IsValid() {
					problems = append(problems, fmt.Sprintf("grants.%s.%s: unknown tier", rawFeature, rawTier))
					continue
				}
				g, err := parseGrant(rawGrant)
				if err != nil {
					problems = append(problems, fmt.Sprintf("grants.%s.%s: %v", rawFeature, rawTier, err))
					continue
				}
				grants[f][tier] = g
			}
		}
	}

	if len(problems) > 0 {
		return nil, apperrors.NewConfigurationError("invalid quota policy file", problems...)
	}
	return build(policies, grants)
}

func build(policies []quota.Policy, grants map[quota.Feature]map[quota.Tier]allowance.Grant) (*Tables, error) {
	table, err := quota.NewPolicyTable(policies)
	if err != nil {
		var incomplete *quota.IncompleteTableError
		if errors.As(err, &incomplete) {
			return nil, apperrors.NewConfigurationError("incomplete quota policy table", incomplete.Error())
		}
		return nil, apperrors.NewConfigurationError("invalid quota policy table", err.Error())
	}

	grantTable, err := allowance.NewGrantTable(grants)
	if err != nil {
		return nil, apperrors.NewConfigurationError("invalid allowance grant table", err.Error())
	}
	return &Tables{Policies: table, Grants: grantTable}, nil
}

func (e policyEntry) toPolicy() (quota.Policy, error) {
	f, err := quota.ParseFeature(e.Feature)
	if err != nil {
		return quota.Policy{}, err
	}
	tier := quota.Tier(strings.ToLower(strings.TrimSpace(e.Tier)))
	if !tier.IsValid() {
		return quota.Policy{}, fmt.Errorf("%w: %q", quota.ErrInvalidTier, e.Tier)
	}
	window, err := time.ParseDuration(e.Window)
	if err != nil {
		return quota.Policy{}, fmt.Errorf("window: %w", err)
	}
	windowType := quota.WindowType(e.WindowType)
	if windowType == "" {
		windowType = quota.WindowSliding
	}

	p := quota.Policy{Feature: f, Tier: tier, Limit: e.Limit, Window: window, WindowType: windowType}
	if err := p.Validate(); err != nil {
		return quota.Policy{}, err
	}
	return p, nil
}

func parseGrant(raw string) (allowance.Grant, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == unlimitedGrant {
		return allowance.Unlimited(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return allowance.Grant{}, fmt.Errorf("grant must be a non-negative integer or %q, got %q", unlimitedGrant, raw)
	}
	return allowance.Limited(n), nil
}
