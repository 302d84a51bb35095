// Package handoff routes decided intakes to downstream systems: a Notion
// review board, Salesforce leads, and an optional webhook.
package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/pkg/notion"
	"github.com/sells-group/intake-cli/pkg/salesforce"
)

const leadObject = "Lead"

// Config selects which downstream targets are active. Empty fields disable
// the corresponding target.
type Config struct {
	NotionReviewDB string
	WebhookURL     string
}

// Outcome reports what the dispatcher managed to deliver. Handoff is
// best-effort: a failed target never fails the intake itself.
type Outcome struct {
	NotionPageID  string `json:"notion_page_id,omitempty"`
	NotionError   string `json:"notion_error,omitempty"`
	SalesforceID  string `json:"salesforce_id,omitempty"`
	SalesforceErr string `json:"salesforce_error,omitempty"`
	WebhookSent   bool   `json:"webhook_sent"`
	WebhookError  string `json:"webhook_error,omitempty"`
}

// Dispatcher fans a decided intake out to the configured targets.
type Dispatcher struct {
	notion     notion.Client
	sf         salesforce.Client
	httpClient *http.Client
	cfg        Config
}

// New creates a Dispatcher. notionClient and sfClient may be nil when the
// corresponding target is not configured.
func New(notionClient notion.Client, sfClient salesforce.Client, cfg Config) *Dispatcher {
	return &Dispatcher{
		notion:     notionClient,
		sf:         sfClient,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cfg:        cfg,
	}
}

// Dispatch delivers the result to all applicable targets concurrently:
// a review page when human review is required, a Salesforce lead when the
// decision asks for lawyer approval, and the webhook always. Once every
// branch has settled, the review page is stamped with what was delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, result *model.IntakeResult) *Outcome {
	log := zap.L().With(zap.String("session_id", result.SessionID))
	outcome := &Outcome{}

	var g errgroup.Group

	if d.notion != nil && d.cfg.NotionReviewDB != "" && result.Quality.RequiresHumanReview {
		g.Go(func() error {
			page, err := d.notion.CreatePage(ctx, d.reviewPageRequest(result))
			if err != nil {
				outcome.NotionError = err.Error()
				log.Warn("handoff: notion review page failed", zap.Error(err))
				return nil
			}
			outcome.NotionPageID = string(page.ID)
			return nil
		})
	}

	if d.sf != nil && result.Action.Action == model.ActionRequestLawyerApproval {
		g.Go(func() error {
			id, err := d.upsertLead(ctx, result, log)
			if err != nil {
				outcome.SalesforceErr = err.Error()
				log.Warn("handoff: salesforce lead failed", zap.Error(err))
				return nil
			}
			outcome.SalesforceID = id
			return nil
		})
	}

	if d.cfg.WebhookURL != "" {
		g.Go(func() error {
			if err := d.postWebhook(ctx, result); err != nil {
				outcome.WebhookError = err.Error()
				log.Warn("handoff: webhook failed", zap.Error(err))
				return nil
			}
			outcome.WebhookSent = true
			return nil
		})
	}

	g.Wait() //nolint:errcheck // branches record their own errors

	if outcome.NotionPageID != "" {
		d.stampReviewPage(ctx, outcome, log)
	}
	return outcome
}

type leadRef struct {
	Id string
}

// upsertLead reuses an existing lead with the same email instead of creating
// a duplicate on every repeat intake. Lookup failures fall through to insert.
func (d *Dispatcher) upsertLead(ctx context.Context, result *model.IntakeResult, log *zap.Logger) (string, error) {
	record := leadRecord(result)

	if email := result.Contact.Email; email != "" {
		soql := fmt.Sprintf("SELECT Id FROM Lead WHERE Email = '%s' LIMIT 1",
			strings.ReplaceAll(email, "'", `\'`))
		var existing []leadRef
		if err := d.sf.Query(ctx, soql, &existing); err != nil {
			log.Warn("handoff: lead lookup failed, inserting new", zap.Error(err))
		} else if len(existing) > 0 {
			if err := d.sf.UpdateOne(ctx, leadObject, existing[0].Id, record); err != nil {
				return "", err
			}
			return existing[0].Id, nil
		}
	}

	return d.sf.InsertOne(ctx, leadObject, record)
}

// stampReviewPage records on the review page which downstream deliveries
// succeeded, so the reviewing lawyer sees the lead and webhook state inline.
func (d *Dispatcher) stampReviewPage(ctx context.Context, outcome *Outcome, log *zap.Logger) {
	props := notionapi.Properties{}
	if outcome.SalesforceID != "" {
		props["Lead"] = richText(outcome.SalesforceID)
	}
	if outcome.WebhookSent {
		props["Webhook Delivered"] = notionapi.CheckboxProperty{
			Type:     notionapi.PropertyTypeCheckbox,
			Checkbox: true,
		}
	}
	if len(props) == 0 {
		return
	}

	_, err := d.notion.UpdatePage(ctx, outcome.NotionPageID, &notionapi.PageUpdateRequest{
		Properties: props,
	})
	if err != nil {
		outcome.NotionError = err.Error()
		log.Warn("handoff: review page stamp failed", zap.Error(err))
	}
}

func (d *Dispatcher) reviewPageRequest(result *model.IntakeResult) *notionapi.PageCreateRequest {
	title := result.Contact.FullName
	if title == "" {
		title = "Unnamed intake " + result.SessionID
	}

	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: title}},
			},
		},
		"Session":  richText(result.SessionID),
		"Team":     richText(result.TeamID),
		"Workflow": selectOption(string(result.Workflow.Workflow)),
		"Action":   selectOption(string(result.Action.Action)),
		"Quality": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(result.Quality.QualityScore),
		},
		"Degraded": notionapi.CheckboxProperty{
			Type:     notionapi.PropertyTypeCheckbox,
			Checkbox: result.Degraded,
		},
		"Summary": richText(result.Contact.MatterDescription),
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(d.cfg.NotionReviewDB),
		},
		Properties: props,
	}
}

func leadRecord(result *model.IntakeResult) map[string]any {
	lastName := result.Contact.FullName
	if lastName == "" {
		lastName = "Unknown"
	}
	return map[string]any{
		"LastName":    lastName,
		"Company":     fmt.Sprintf("Intake %s", result.SessionID),
		"Email":       result.Contact.Email,
		"Phone":       result.Contact.Phone,
		"Description": result.Contact.MatterDescription,
		"LeadSource":  "Conversational Intake",
		"Rating":      string(result.Action.Priority),
	}
}

func (d *Dispatcher) postWebhook(ctx context.Context, result *model.IntakeResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

func richText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
		},
	}
}

func selectOption(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{
		Type:   notionapi.PropertyTypeSelect,
		Select: notionapi.Option{Name: name},
	}
}
