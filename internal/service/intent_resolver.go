package service

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

// IntentRule binds a message pattern to a named intent. Rules with a
// non-empty Roles list exist only for those roles: to anyone else the
// rule is invisible, not forbidden. Extract pulls arguments out of the
// submatch groups; returning false rejects the match and resolution
// falls through to the next rule.
type IntentRule struct {
	Name    string
	Pattern *regexp.Regexp
	Roles   []authz.Role
	Extract func(groups []string) (map[string]string, bool)
}

func (r *IntentRule) visibleTo(role authz.Role) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// IntentMatch is a resolved intent with its extracted arguments.
type IntentMatch struct {
	Rule *IntentRule
	Args map[string]string
}

// IntentResolver resolves free-form messages against an ordered rule
// set. The first visible rule whose pattern matches and whose extraction
// succeeds wins; no match at all is a normal outcome, not a fault.
type IntentResolver struct {
	rules  []IntentRule
	logger *zap.Logger
}

// NewIntentResolver constructs a resolver over the given rule order.
func NewIntentResolver(rules []IntentRule, logger *zap.Logger) *IntentResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentResolver{rules: rules, logger: logger}
}

// Resolve finds the first matching rule for the caller's role. Messages
// are lowercased and trimmed before matching.
func (r *IntentResolver) Resolve(role authz.Role, message string) (*IntentMatch, error) {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return nil, appErrors.Clone(appErrors.ErrNoMatch, "")
	}

	for i := range r.rules {
		rule := &r.rules[i]
		if !rule.visibleTo(role) {
			continue
		}
		groups := rule.Pattern.FindStringSubmatch(normalized)
		if groups == nil {
			continue
		}

		args := map[string]string{}
		if rule.Extract != nil {
			extracted, ok := rule.Extract(groups)
			if !ok {
				r.logger.Debug("intent extraction failed, falling through",
					zap.String("intent", rule.Name))
				continue
			}
			args = extracted
		}
		return &IntentMatch{Rule: rule, Args: args}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNoMatch, "")
}
