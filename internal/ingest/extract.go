package ingest

import (
	"regexp"

	"github.com/tylertestin/InnovationAward/internal/model"
)

// emailRegex matches bare email addresses inside free text.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ExtractEmails pulls every email address out of free text, normalized and
// deduplicated case-insensitively, in first-seen order.
func ExtractEmails(text string) []string {
	matches := emailRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		norm := model.NormalizeEmail(m)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

// Filter is a caller-supplied inclusion predicate over normalized email
// addresses. Addresses it rejects never reach the entity store.
type Filter func(email string) bool

// KeepAll admits every address.
func KeepAll() Filter {
	return func(string) bool { return true }
}

// ExternalOnly admits addresses whose domain differs from internalDomain
// (case-insensitive). An empty internalDomain admits everything.
func ExternalOnly(internalDomain string) Filter {
	internal := model.NormalizeEmail(internalDomain)
	if internal == "" {
		return KeepAll()
	}
	return func(email string) bool {
		return model.EmailDomain(model.NormalizeEmail(email)) != internal
	}
}
