package intake

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Prompts holds the per-stage system prompts. Zero-value fields fall back to
// the compiled-in defaults.
type Prompts struct {
	Classify string `yaml:"classify"`
	Matter   string `yaml:"matter"`
	Contact  string `yaml:"contact"`
	Quality  string `yaml:"quality"`
	Decide   string `yaml:"decide"`
}

const classifySystemPrompt = `You are the intake classifier for a law firm. Classify the client's message into exactly one workflow: matter_creation, general_inquiry, appointment_request, other. Respond with a valid JSON object: {"workflow": "<workflow>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`

const matterSystemPrompt = `You extract structured legal matter details from a client's intake message. Respond with a valid JSON object: {"matter_type": "<practice area, e.g. Family Law>", "urgency": "low|medium|high", "complexity": <1-10>, "intent": "<what the client wants>", "estimated_value": <USD amount, 0 if unknown>}`

const contactSystemPrompt = `You extract contact information from a client's intake message. Omit fields that are not present; never invent values. Respond with a valid JSON object: {"full_name": "<name>", "email": "<email>", "phone": "<phone>", "matter_description": "<short description>", "opposing_party": "<name if mentioned>"}`

const qualitySystemPrompt = `You assess the quality of a structured legal intake. Score each dimension 0-100. Respond with a valid JSON object: {"quality_score": <0-100>, "completeness_score": <0-100>, "clarity_score": <0-100>, "requires_human_review": <true|false>, "recommendations": ["<improvement>", ...]}`

const decideSystemPrompt = `You decide how a scored legal intake should be routed. Respond with a valid JSON object: {"action": "request_lawyer_approval|request_more_info|escalate|reject", "priority": "low|medium|high", "reasoning": "<one sentence>"}`

// DefaultPrompts returns the compiled-in system prompts for all five stages.
func DefaultPrompts() Prompts {
	return Prompts{
		Classify: classifySystemPrompt,
		Matter:   matterSystemPrompt,
		Contact:  contactSystemPrompt,
		Quality:  qualitySystemPrompt,
		Decide:   decideSystemPrompt,
	}
}

// LoadPrompts returns the default prompts overlaid with any stage prompts
// defined in the YAML file at path. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return prompts, eris.Wrapf(err, "prompts: read %s", path)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return prompts, eris.Wrapf(err, "prompts: parse %s", path)
	}

	if overrides.Classify != "" {
		prompts.Classify = overrides.Classify
	}
	if overrides.Matter != "" {
		prompts.Matter = overrides.Matter
	}
	if overrides.Contact != "" {
		prompts.Contact = overrides.Contact
	}
	if overrides.Quality != "" {
		prompts.Quality = overrides.Quality
	}
	if overrides.Decide != "" {
		prompts.Decide = overrides.Decide
	}
	return prompts, nil
}
