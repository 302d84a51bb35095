package intake

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/intake-cli/internal/model"
)

// contactStage extracts how to reach the client. A run with no email and no
// phone cannot proceed to scoring: the firm has no way to follow up, so the
// stage fails the whole intake rather than producing an unreachable lead.
type contactStage struct{}

var nameCaser = cases.Title(language.English)

func (s *contactStage) Name() string { return "contact" }

func (s *contactStage) Status() model.IntakeStatus { return model.StatusContactDone }

func (s *contactStage) Skip(_ *State) bool { return false }

func (s *contactStage) ParseRetries() int { return 0 }

func (s *contactStage) BuildPrompt(st *State, prompts Prompts) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Client message:\n%s\n", st.Session.Message)
	if st.Matter != nil && st.Matter.MatterType != "" {
		fmt.Fprintf(&b, "\nMatter type: %s\n", st.Matter.MatterType)
	}
	return prompts.Contact, b.String()
}

func (s *contactStage) HandleResponse(st *State, raw string) error {
	var rec struct {
		FullName          string `json:"fullname"`
		Email             string `json:"email"`
		Phone             string `json:"phone"`
		MatterDescription string `json:"matterdescription"`
		OpposingParty     string `json:"opposingparty"`
	}
	if err := decodeStage(raw, &rec); err != nil {
		return err
	}

	st.Contact = &model.ContactExtraction{
		FullName:          normalizeName(rec.FullName),
		Email:             strings.ToLower(strings.TrimSpace(rec.Email)),
		Phone:             strings.TrimSpace(rec.Phone),
		MatterDescription: strings.TrimSpace(rec.MatterDescription),
		OpposingParty:     normalizeName(rec.OpposingParty),
	}
	return nil
}

func (s *contactStage) Validate(st *State) error {
	if !st.Contact.HasChannel() {
		return &ValidationError{
			Code:   ValidationContactInfoMissing,
			Detail: "no email or phone extracted from the intake message",
		}
	}
	if st.Contact.FullName == "" {
		// Reachable but anonymous: usable lead, flagged for a human to chase
		// the name down.
		st.Degraded = true
		st.Failures = append(st.Failures, model.StageFailure{
			Stage: s.Name(),
			Kind:  model.FailureValidation,
			Error: "no client name extracted",
		})
	}
	return nil
}

func (s *contactStage) Fallback(st *State, _ error) {
	// The empty record fails Validate with contact_info_missing, which is
	// the correct terminal outcome when contact details cannot be parsed.
	st.Contact = &model.ContactExtraction{}
}

// normalizeName title-cases names the model returned in a single case
// (all-lower or all-upper); mixed-case names pass through untouched so
// spellings like "McAllister" survive.
func normalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	if name == strings.ToLower(name) || name == strings.ToUpper(name) {
		return nameCaser.String(strings.ToLower(name))
	}
	return name
}
