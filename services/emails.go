package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/mailer"
	"github.com/heliumhq/invite-dashboard-api/models"
	templates "github.com/heliumhq/invite-dashboard-api/templates/html"
)

// DowntimeSubject and DowntimeText are sent by a bulk send without custom content
const (
	DowntimeSubject = "Scheduled Downtime: Helium will be unavailable for 1 hour"
	DowntimeText    = `Scheduled Downtime: Helium will be unavailable for 1 hour

Greetings from Helium,

We wanted to let you know that Helium will be temporarily unavailable for 1 hour as we perform scheduled maintenance and upgrades.

During this window, you won't be able to access Helium. Once the maintenance is complete, you'll be able to log back in and experience the platform as usual.

We appreciate your patience and understanding as we work to make Helium even better for you.

Thanks,
The Helium Team`
)

// CreditsSubject and CreditsText are sent when credits are assigned
const (
	CreditsSubject = "Credits Added to Your Account"
	CreditsText    = `Credits Added to Your Account

Greetings from Helium,

We're excited to inform you that credits have been added to your Helium account. These credits are now available for you to use across all platform features.

You can check your credit balance in your account dashboard at any time. If you have any questions about your credits or how to use them, please feel free to reach out to our support team.

Thank you for being a valued member of the Helium community.

Thanks,
The Helium Team`
)

// sendAllowance bounds one provider call within a bulk send
const sendAllowance = 10 * time.Second

// Emails composes and sends dashboard email
type Emails struct {
	Sender    mailer.Sender
	Images    *mailer.Images
	Profiles  databases.ProfileDatabase
	Directory identity.Directory
	// Limiter throttles bulk sends; nil sends without pause
	Limiter *rate.Limiter
	Now     func() time.Time
}

func (e *Emails) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// SendBulk mails every selected profile, or every profile when none are
// selected. A failure for one recipient is counted and the send continues.
// Sending outlives ctx's deadline and cancellation; it is bounded instead by
// the recipient count and the limiter's rate.
func (e *Emails) SendBulk(ctx context.Context, req models.SendBulkEmailRequest) (*models.BulkEmailResult, error) {
	if req.CustomEmail != nil {
		if err := Validate(req.CustomEmail); err != nil {
			return nil, err
		}
	}

	recipients, err := e.recipients(ctx, req.SelectedUserIDs)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, invalid("no users found to send emails to")
	}

	emails, err := identity.Emails(ctx, e.Directory, recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipient emails: %w", err)
	}

	subject, text, html := DowntimeSubject, DowntimeText, ""
	if req.CustomEmail != nil {
		subject, text, html = req.CustomEmail.Subject, req.CustomEmail.TextContent, req.CustomEmail.HTMLContent
	} else {
		html = templates.RenderDowntime(mailer.CIDSource{}, text)
	}
	inline := e.Images.ReferencedBy(html)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.bulkBudget(len(recipients)))
	defer cancel()

	result := &models.BulkEmailResult{Total: len(recipients), Errors: []string{}}
	for _, userID := range recipients {
		to := emails[userID].Email
		if to == "" {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("User %s: No email found", userID))
			continue
		}
		if e.Limiter != nil {
			if err := e.Limiter.Wait(ctx); err != nil {
				result.ErrorCount++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", to, err))
				continue
			}
		}
		err := e.Sender.Send(sendCtx, &mailer.Message{To: to, Subject: subject, Text: text, HTML: html, Inline: inline})
		if err != nil {
			zap.S().Errorw("failed to send email", "to", to, "error", err)
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", to, err))
			continue
		}
		result.SuccessCount++
	}
	zap.S().Infow("bulk email finished",
		"total", result.Total,
		"sent", result.SuccessCount,
		"failed", result.ErrorCount)
	return result, nil
}

// bulkBudget is how long a bulk send to n recipients may take
func (e *Emails) bulkBudget(n int) time.Duration {
	budget := time.Duration(n) * sendAllowance
	if e.Limiter != nil {
		if limit := e.Limiter.Limit(); limit != rate.Inf && limit > 0 {
			budget += time.Duration(float64(n) / float64(limit) * float64(time.Second))
		}
	}
	return budget
}

// recipients returns the user ids of the selected profiles in profile order
func (e *Emails) recipients(ctx context.Context, selected []string) ([]string, error) {
	var ids []string
	if len(selected) > 0 {
		selected = distinct(selected)
		found, err := e.Profiles.FindByUserIDs(ctx, selected)
		if err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		for _, id := range selected {
			if _, ok := found[id]; ok {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}

	profiles, err := e.Profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, p := range profiles {
		if p.UserID != "" {
			ids = append(ids, p.UserID)
		}
	}
	return distinct(ids), nil
}

// SendIndividual mails supplied content to one address
func (e *Emails) SendIndividual(ctx context.Context, req models.SendIndividualEmailRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	err := e.Sender.Send(ctx, &mailer.Message{
		To:      req.IndividualEmail,
		Subject: req.Subject,
		Text:    req.TextContent,
		HTML:    req.HTMLContent,
		Inline:  e.Images.ReferencedBy(req.HTMLContent),
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	zap.S().Infow("sent individual email", "to", req.IndividualEmail)
	return nil
}

// SendCreditsAdded tells a user their credits arrived and records on the
// profile that the email went out
func (e *Emails) SendCreditsAdded(ctx context.Context, userID string, amount decimal.Decimal) error {
	user, err := e.Directory.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if user.Email == "" {
		return fmt.Errorf("%w: user %s has no email", ErrNotFound, userID)
	}

	err = e.Sender.Send(ctx, &mailer.Message{
		To:      user.Email,
		Subject: CreditsSubject,
		Text:    CreditsText,
		HTML:    templates.RenderCredits(mailer.CIDSource{}, FormatAmount(amount)),
		Inline:  e.Images.Inline(mailer.ImageLogo, mailer.ImageCreditsBody),
	})
	if err != nil {
		return fmt.Errorf("failed to send credits email: %w", err)
	}

	now := e.now()
	err = e.Profiles.UpdateByUserID(ctx, userID, bson.M{
		"metadata.credits_email_sent_at": now,
		"metadata.credits_assigned":      true,
		"updated_at":                     now,
	})
	if err != nil && !errors.Is(err, databases.ErrNotFound) {
		zap.S().Warnw("credits email sent but profile not marked", "user_id", userID, "error", err)
	}
	zap.S().Infow("sent credits email", "user_id", userID, "amount", amount.String())
	return nil
}

// FormatAmount renders a dollar amount with thousands separators, e.g. $1,000 or $12.50
func FormatAmount(amount decimal.Decimal) string {
	whole := amount.Truncate(0)
	s := "$" + humanize.Comma(whole.IntPart())
	if !amount.Equal(whole) {
		s += strings.TrimPrefix(amount.Sub(whole).Abs().StringFixed(2), "0")
	}
	return s
}

// ImageURIs returns the template images as data URIs keyed the way the dashboard expects
func (e *Emails) ImageURIs() map[string]string {
	return map[string]string{
		"logo":         e.Images.DataURI(mailer.ImageLogo),
		"downtimeBody": e.Images.DataURI(mailer.ImageDowntimeBody),
		"uptimeBody":   e.Images.DataURI(mailer.ImageUptimeBody),
		"creditsBody":  e.Images.DataURI(mailer.ImageCreditsBody),
	}
}

// Preview renders a template with images embedded as data URIs
func (e *Emails) Preview(req models.PreviewEmailRequest) (string, error) {
	if err := Validate(req); err != nil {
		return "", err
	}
	switch req.Template {
	case "downtime":
		return templates.RenderDowntime(e.Images, req.TextContent), nil
	case "uptime":
		return templates.RenderUptime(e.Images, req.TextContent), nil
	default:
		return templates.RenderCredits(e.Images, ""), nil
	}
}
