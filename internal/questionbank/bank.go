// Package questionbank holds the static, per-domain question sets that drive
// an elicitation session. Banks are shipped as embedded YAML and are
// read-only at runtime.
package questionbank

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Domain identifies which question set governs a session.
type Domain string

// Known project domains.
const (
	DomainGeneral        Domain = "general"
	DomainWebApp         Domain = "web-app"
	DomainAPI            Domain = "api"
	DomainFullStack      Domain = "full-stack"
	DomainCLI            Domain = "cli"
	DomainMobile         Domain = "mobile"
	DomainDataPipeline   Domain = "data-pipeline"
	DomainLibrary        Domain = "library"
	DomainInfrastructure Domain = "infrastructure"
	DomainAIML           Domain = "ai-ml"
)

// Pattern types for follow-up conditions.
const (
	PatternContains = "contains"
	PatternRegex    = "regex"
)

// FollowUpCondition inserts extra questions into a section when an answer's
// text matches the pattern.
type FollowUpCondition struct {
	Pattern             string   `yaml:"pattern" json:"pattern"`
	PatternType         string   `yaml:"pattern_type" json:"pattern_type"`
	FollowUpQuestionIDs []string `yaml:"follow_up_question_ids" json:"follow_up_question_ids"`
}

// Matches reports whether the answer text satisfies the condition. Contains
// patterns match case-insensitively; regex patterns use Go regexp syntax.
// An invalid regex never matches (banks are validated at load time, so this
// only arises for hand-built conditions in tests).
func (c *FollowUpCondition) Matches(answerText string) bool {
	switch c.PatternType {
	case PatternRegex:
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(answerText)
	default:
		return strings.Contains(strings.ToLower(answerText), strings.ToLower(c.Pattern))
	}
}

// Question is a single prompt within a section. SectionID is filled in at
// load time from the enclosing section.
type Question struct {
	ID          string             `yaml:"id" json:"id"`
	SectionID   string             `yaml:"-" json:"section_id"`
	Text        string             `yaml:"text" json:"text"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool               `yaml:"required" json:"required"`
	FollowUp    *FollowUpCondition `yaml:"follow_up,omitempty" json:"follow_up,omitempty"`
}

// Section groups related questions. Questions holds the static ask order;
// FollowUps holds questions that only enter the queue when a condition
// fires. Both lists share the section's id namespace.
type Section struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Questions []Question `yaml:"questions" json:"questions"`
	FollowUps []Question `yaml:"follow_ups,omitempty" json:"follow_ups,omitempty"`
}

// Question returns the question with the given id from either list.
func (s *Section) Question(id string) (*Question, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	for i := range s.FollowUps {
		if s.FollowUps[i].ID == id {
			return &s.FollowUps[i], true
		}
	}
	return nil, false
}

// StaticIDs returns the ids of the section's static questions in bank order.
func (s *Section) StaticIDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}

// DomainQuestionSet is one domain's complete bank: ordered sections and the
// questions within each.
type DomainQuestionSet struct {
	Domain   Domain    `yaml:"domain" json:"domain"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Section returns the section with the given id.
func (d *DomainQuestionSet) Section(id string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// Provider supplies question sets by domain. Implementations return nil for
// unknown domains.
type Provider interface {
	QuestionSet(domain Domain) *DomainQuestionSet
}

//go:embed banks/*.yaml
var bankFS embed.FS

// Registry is the embedded-bank Provider.
type Registry struct {
	sets map[Domain]*DomainQuestionSet
}

// Load parses and validates every embedded bank file.
func Load() (*Registry, error) {
	entries, err := bankFS.ReadDir("banks")
	if err != nil {
		return nil, fmt.Errorf("reading embedded banks: %w", err)
	}

	sets := make(map[Domain]*DomainQuestionSet, len(entries))
	for _, entry := range entries {
		data, err := bankFS.ReadFile("banks/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading bank %s: %w", entry.Name(), err)
		}

		var set DomainQuestionSet
		if err := yaml.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("parsing bank %s: %w", entry.Name(), err)
		}

		if err := validate(&set); err != nil {
			return nil, fmt.Errorf("bank %s: %w", entry.Name(), err)
		}

		// Stamp the owning section onto every question.
		for i := range set.Sections {
			sec := &set.Sections[i]
			for j := range sec.Questions {
				sec.Questions[j].SectionID = sec.ID
			}
			for j := range sec.FollowUps {
				sec.FollowUps[j].SectionID = sec.ID
			}
		}

		if _, dup := sets[set.Domain]; dup {
			return nil, fmt.Errorf("bank %s: duplicate domain %q", entry.Name(), set.Domain)
		}
		sets[set.Domain] = &set
	}

	return &Registry{sets: sets}, nil
}

// QuestionSet returns the bank for the given domain, or nil if absent.
func (r *Registry) QuestionSet(domain Domain) *DomainQuestionSet {
	return r.sets[domain]
}

// Domains returns every domain the registry knows about.
func (r *Registry) Domains() []Domain {
	domains := make([]Domain, 0, len(r.sets))
	for d := range r.sets {
		domains = append(domains, d)
	}
	return domains
}

// validate checks structural invariants: question ids unique within the
// domain, follow-up references resolve within the same section, and regex
// patterns compile.
func validate(set *DomainQuestionSet) error {
	if set.Domain == "" {
		return fmt.Errorf("missing domain")
	}
	if len(set.Sections) == 0 {
		return fmt.Errorf("domain %q has no sections", set.Domain)
	}

	seen := make(map[string]bool)
	for _, sec := range set.Sections {
		if sec.ID == "" {
			return fmt.Errorf("domain %q has a section without an id", set.Domain)
		}

		all := make([]Question, 0, len(sec.Questions)+len(sec.FollowUps))
		all = append(all, sec.Questions...)
		all = append(all, sec.FollowUps...)

		for _, q := range all {
			if q.ID == "" {
				return fmt.Errorf("section %q has a question without an id", sec.ID)
			}
			if seen[q.ID] {
				return fmt.Errorf("duplicate question id %q", q.ID)
			}
			seen[q.ID] = true

			if q.FollowUp == nil {
				continue
			}
			if q.FollowUp.PatternType != PatternContains && q.FollowUp.PatternType != PatternRegex {
				return fmt.Errorf("question %q: unknown pattern type %q", q.ID, q.FollowUp.PatternType)
			}
			if q.FollowUp.PatternType == PatternRegex {
				if _, err := regexp.Compile("(?i)" + q.FollowUp.Pattern); err != nil {
					return fmt.Errorf("question %q: invalid pattern: %w", q.ID, err)
				}
			}
			if len(q.FollowUp.FollowUpQuestionIDs) == 0 {
				return fmt.Errorf("question %q: follow-up condition with no target questions", q.ID)
			}
			for _, id := range q.FollowUp.FollowUpQuestionIDs {
				if _, ok := sec.Question(id); !ok {
					return fmt.Errorf("question %q: follow-up target %q not found in section %q", q.ID, id, sec.ID)
				}
			}
		}
	}

	return nil
}
