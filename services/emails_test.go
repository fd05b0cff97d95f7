package services_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/heliumhq/invite-dashboard-api/api/testhelpers"
	"github.com/heliumhq/invite-dashboard-api/mailer"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
)

func loadTestImages(t *testing.T, names ...string) *mailer.Images {
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png-"+name), 0o600))
	}
	return mailer.LoadImages(dir)
}

type emailFixture struct {
	emails   *services.Emails
	sender   *testhelpers.Sender
	dir      *testhelpers.Directory
	profiles *testhelpers.ProfileStore
}

func newEmailFixture(t *testing.T) emailFixture {
	f := emailFixture{
		sender: &testhelpers.Sender{},
		dir: &testhelpers.Directory{Users: []models.Identity{
			{ID: "u1", Email: "a@x.com"},
			{ID: "u2", Email: "b@x.com"},
			{ID: "u3"},
		}},
		profiles: &testhelpers.ProfileStore{Profiles: []models.Profile{
			{UserID: "u1", CreatedAt: t0.Add(3 * time.Hour), Metadata: map[string]interface{}{}},
			{UserID: "u2", CreatedAt: t0.Add(2 * time.Hour)},
			{UserID: "u3", CreatedAt: t0.Add(time.Hour)},
		}},
	}
	f.emails = &services.Emails{
		Sender:    f.sender,
		Images:    loadTestImages(t, "email-logo.png", "downtime-body.png", "1Kcredits.png"),
		Profiles:  f.profiles,
		Directory: f.dir,
		Limiter:   rate.NewLimiter(rate.Inf, 1),
		Now:       func() time.Time { return t0 },
	}
	return f
}

func TestSendBulkDefaultDowntime(t *testing.T) {
	f := newEmailFixture(t)

	result, err := f.emails.SendBulk(context.Background(), models.SendBulkEmailRequest{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, []string{"User u3: No email found"}, result.Errors)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, f.sender.Recipients())

	msg := f.sender.Sent[0]
	assert.Equal(t, services.DowntimeSubject, msg.Subject)
	assert.Equal(t, services.DowntimeText, msg.Text)
	assert.Contains(t, msg.HTML, "cid:email-logo")
	assert.Contains(t, msg.HTML, "cid:downtime-body")
	var cids []string
	for _, img := range msg.Inline {
		cids = append(cids, img.CID)
	}
	assert.ElementsMatch(t, []string{"email-logo", "downtime-body"}, cids)
}

func TestSendBulkCustomSelectedAndPartialFailure(t *testing.T) {
	f := newEmailFixture(t)
	f.sender.Fail = func(to string) error {
		if to == "b@x.com" {
			return &mailer.SendError{Kind: mailer.KindProtocol, Err: errors.New("550 mailbox unavailable")}
		}
		return nil
	}

	result, err := f.emails.SendBulk(context.Background(), models.SendBulkEmailRequest{
		CustomEmail:     &models.EmailContent{Subject: "Hello", TextContent: "hi", HTMLContent: "<p>hi</p>"},
		SelectedUserIDs: []string{"u2", "u1", "u1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "b@x.com: "))
	require.Len(t, f.sender.Sent, 1)
	assert.Equal(t, "Hello", f.sender.Sent[0].Subject)
	assert.Empty(t, f.sender.Sent[0].Inline)
}

func TestSendBulkOutlivesRequestDeadline(t *testing.T) {
	f := newEmailFixture(t)
	f.dir.Users = nil
	f.profiles.Profiles = nil
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("u%02d", i)
		f.dir.Users = append(f.dir.Users, models.Identity{ID: id, Email: id + "@x.com"})
		f.profiles.Profiles = append(f.profiles.Profiles, models.Profile{UserID: id, CreatedAt: t0.Add(-time.Duration(i) * time.Minute)})
	}
	// 20 sends at 100/s need about 190ms, well past the caller's deadline
	f.emails.Limiter = rate.NewLimiter(100, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := f.emails.SendBulk(ctx, models.SendBulkEmailRequest{})
	require.NoError(t, err)

	assert.Equal(t, 20, result.Total)
	assert.Equal(t, 20, result.SuccessCount)
	assert.Zero(t, result.ErrorCount, result.Errors)
	assert.Len(t, f.sender.Sent, 20)
}

func TestSendBulkNoRecipients(t *testing.T) {
	f := newEmailFixture(t)

	_, err := f.emails.SendBulk(context.Background(), models.SendBulkEmailRequest{SelectedUserIDs: []string{"nobody"}})

	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Empty(t, f.sender.Sent)
}

func TestSendBulkRejectsIncompleteCustomEmail(t *testing.T) {
	f := newEmailFixture(t)

	_, err := f.emails.SendBulk(context.Background(), models.SendBulkEmailRequest{
		CustomEmail: &models.EmailContent{Subject: "no html"},
	})

	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestSendIndividual(t *testing.T) {
	f := newEmailFixture(t)

	err := f.emails.SendIndividual(context.Background(), models.SendIndividualEmailRequest{
		IndividualEmail: "z@x.com",
		Subject:         "Credits",
		HTMLContent:     `<img src="cid:credits-body">`,
	})
	require.NoError(t, err)

	require.Len(t, f.sender.Sent, 1)
	require.Len(t, f.sender.Sent[0].Inline, 1)
	assert.Equal(t, "credits-body", f.sender.Sent[0].Inline[0].CID)

	err = f.emails.SendIndividual(context.Background(), models.SendIndividualEmailRequest{IndividualEmail: "bad"})
	assert.ErrorIs(t, err, services.ErrValidation)

	f.sender.Fail = func(string) error { return errors.New("refused") }
	err = f.emails.SendIndividual(context.Background(), models.SendIndividualEmailRequest{
		IndividualEmail: "z@x.com", Subject: "s", HTMLContent: "<p></p>",
	})
	assert.ErrorContains(t, err, "refused")
}

func TestSendCreditsAddedMarksProfile(t *testing.T) {
	f := newEmailFixture(t)

	require.NoError(t, f.emails.SendCreditsAdded(context.Background(), "u1", decimal.NewFromInt(1000)))

	require.Len(t, f.sender.Sent, 1)
	msg := f.sender.Sent[0]
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, services.CreditsSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "$1,000")
	assert.Len(t, msg.Inline, 2)

	profile := f.profiles.Profiles[0]
	assert.Equal(t, true, profile.Metadata["credits_assigned"])
	assert.Equal(t, t0, profile.Metadata["credits_email_sent_at"])
	assert.Equal(t, t0, profile.UpdatedAt)
}

func TestSendCreditsAddedFailures(t *testing.T) {
	f := newEmailFixture(t)

	assert.Error(t, f.emails.SendCreditsAdded(context.Background(), "missing", decimal.NewFromInt(5)))
	assert.ErrorIs(t, f.emails.SendCreditsAdded(context.Background(), "u3", decimal.NewFromInt(5)), services.ErrNotFound)

	f.sender.Fail = func(string) error { return errors.New("smtp down") }
	assert.ErrorContains(t, f.emails.SendCreditsAdded(context.Background(), "u1", decimal.NewFromInt(5)), "smtp down")
	assert.Nil(t, f.profiles.Profiles[0].Metadata["credits_assigned"])
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,000", services.FormatAmount(decimal.NewFromInt(1000)))
	assert.Equal(t, "$12.50", services.FormatAmount(decimal.RequireFromString("12.5")))
	assert.Equal(t, "$1,234,567.89", services.FormatAmount(decimal.RequireFromString("1234567.89")))
}

func TestImageURIsAndPreview(t *testing.T) {
	f := newEmailFixture(t)

	uris := f.emails.ImageURIs()
	assert.True(t, strings.HasPrefix(uris["logo"], "data:image/png;base64,"))
	assert.Empty(t, uris["uptimeBody"])
	assert.Len(t, uris, 4)

	html, err := f.emails.Preview(models.PreviewEmailRequest{Template: "downtime", TextContent: "Hi all,\n\nBack soon.\n\nThanks,\nThe Helium Team"})
	require.NoError(t, err)
	assert.Contains(t, html, "data:image/png;base64,")
	assert.Contains(t, html, "Back soon.")
	assert.NotContains(t, html, "cid:")

	_, err = f.emails.Preview(models.PreviewEmailRequest{Template: "birthday"})
	assert.ErrorIs(t, err, services.ErrValidation)
}
