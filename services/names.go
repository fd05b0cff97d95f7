package services

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/models"
)

// metadataNameKeys are the identity metadata keys tried in order
var metadataNameKeys = []string{"full_name", "name", "preferred_name", "display_name"}

// Resolver maps identity ids to a display name and email
type Resolver interface {
	Resolve(ctx context.Context, ids []string) map[string]models.ResolvedName
}

// NameResolver derives display names from the identity directory, the
// profile store and the waitlist, in that order of preference
type NameResolver struct {
	Directory identity.Directory
	Profiles  databases.ProfileDatabase
	Waitlist  databases.WaitlistDatabase
}

// Resolve returns exactly one entry per distinct id. It never fails: a source
// that errors is logged and skipped.
func (n *NameResolver) Resolve(ctx context.Context, ids []string) map[string]models.ResolvedName {
	result := make(map[string]models.ResolvedName, len(ids))
	for _, id := range ids {
		if id == "" {
			// no source can be searched by an empty id
			result[id] = models.ResolvedName{Name: placeholderName(id)}
			break
		}
	}
	ids = distinct(ids)
	if len(ids) == 0 {
		return result
	}

	identities := n.identities(ctx, ids)
	profiles := n.profiles(ctx, ids)

	var pending []string
	for _, id := range ids {
		name := metadataName(identities[id].Metadata)
		if name == "" {
			name = profileName(profiles[id])
		}
		var email *string
		if e := strings.TrimSpace(identities[id].Email); e != "" {
			email = &e
		}
		result[id] = models.ResolvedName{Name: name, Email: email}
		if name == "" {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return result
	}

	entries := n.waitlistByEmail(ctx, pending, result)
	for _, id := range pending {
		resolved := result[id]
		if resolved.Email != nil {
			resolved.Name = strings.TrimSpace(entries[*resolved.Email].FullName)
			if resolved.Name == "" {
				resolved.Name = localPartName(*resolved.Email)
			}
		}
		if resolved.Name == "" {
			resolved.Name = placeholderName(id)
		}
		result[id] = resolved
	}
	return result
}

func (n *NameResolver) identities(ctx context.Context, ids []string) map[string]models.Identity {
	byID := map[string]models.Identity{}
	if n.Directory == nil {
		return byID
	}
	users, err := identity.ListAll(ctx, n.Directory)
	if err != nil {
		zap.S().Warnw("name resolution continuing without identity directory", "error", err)
		return byID
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	for _, u := range users {
		if wanted[u.ID] {
			byID[u.ID] = u
		}
	}
	return byID
}

func (n *NameResolver) profiles(ctx context.Context, ids []string) map[string]models.Profile {
	if n.Profiles == nil {
		return nil
	}
	profiles, err := n.Profiles.FindByUserIDs(ctx, ids)
	if err != nil {
		zap.S().Warnw("name resolution continuing without profiles", "error", err)
		return nil
	}
	return profiles
}

func (n *NameResolver) waitlistByEmail(ctx context.Context, ids []string, resolved map[string]models.ResolvedName) map[string]models.WaitlistEntry {
	if n.Waitlist == nil {
		return nil
	}
	var emails []string
	for _, id := range ids {
		if e := resolved[id].Email; e != nil {
			emails = append(emails, *e)
		}
	}
	if len(emails) == 0 {
		return nil
	}
	entries, err := n.Waitlist.FindByEmails(ctx, emails)
	if err != nil {
		zap.S().Warnw("name resolution continuing without waitlist", "error", err)
		return nil
	}
	return entries
}

func metadataName(metadata map[string]interface{}) string {
	str := func(key string) string {
		s, _ := metadata[key].(string)
		return strings.TrimSpace(s)
	}
	for _, key := range metadataNameKeys {
		if v := str(key); v != "" {
			return v
		}
	}
	first, last := str("first_name"), str("last_name")
	return strings.TrimSpace(first + " " + last)
}

func profileName(p models.Profile) string {
	if name := strings.TrimSpace(p.PreferredName); name != "" {
		return name
	}
	return strings.TrimSpace(p.FullName)
}

// localPartName turns "jo.smith@x.com" into "Jo smith". Local parts of two
// characters or fewer, or not starting with a letter, give "".
func localPartName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if len(local) <= 2 {
		return ""
	}
	first, size := utf8.DecodeRuneInString(local)
	if !unicode.IsLetter(first) {
		return ""
	}
	rest := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local[size:])
	return string(unicode.ToUpper(first)) + rest
}

func placeholderName(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "User " + id
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
