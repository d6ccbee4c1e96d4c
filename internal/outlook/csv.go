// Package outlook maps Outlook inbox and calendar CSV exports onto
// normalized records. Column headers vary across Outlook versions and
// locales, so mapping is heuristic: case-insensitive substring matching
// against a small set of known header fragments.
//
// The rest of the system consumes only the Email/Event records; raw CSV
// never crosses this package's boundary.
package outlook

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/tylertestin/InnovationAward/internal/errors"
)

// Address is a parsed mailbox: optional display name plus address.
type Address struct {
	Name string
	Addr string
}

// Email is one normalized inbox row.
type Email struct {
	Subject     string
	From        Address
	To          []Address
	ReceivedAt  string // ISO-8601, empty when the row had no parseable date
	BodyPreview string
}

// Event is one normalized calendar row.
type Event struct {
	Title       string
	Organizer   Address
	Attendees   []Address
	StartsAt    string // ISO-8601, empty when the row had no parseable date
	BodyPreview string
}

// columnRole is what a CSV column contributes to a record.
type columnRole int

const (
	colIgnore columnRole = iota
	colSubject
	colFrom
	colTo
	colDate
	colBody
)

// headerRole classifies a header cell by fuzzy fragment match.
func headerRole(header string) columnRole {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case strings.Contains(h, "subject"), h == "title":
		return colSubject
	case strings.Contains(h, "organizer"), strings.Contains(h, "from"), strings.Contains(h, "sender"):
		return colFrom
	case strings.Contains(h, "attendee"), h == "to", strings.HasPrefix(h, "to:"), strings.HasPrefix(h, "to "), strings.Contains(h, "recipient"), h == "cc":
		return colTo
	case strings.Contains(h, "received"), strings.Contains(h, "start"), strings.Contains(h, "date"), strings.Contains(h, "sent"):
		return colDate
	case strings.Contains(h, "body"), strings.Contains(h, "preview"), strings.Contains(h, "snippet"), strings.Contains(h, "description"):
		return colBody
	}
	return colIgnore
}

// ParseInbox parses an inbox CSV export into email records.
func ParseInbox(r io.Reader) ([]Email, error) {
	rows, roles, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	emails := make([]Email, 0, len(rows))
	for _, row := range rows {
		var e Email
		for i, cell := range row {
			if i >= len(roles) {
				break
			}
			switch roles[i] {
			case colSubject:
				e.Subject = strings.TrimSpace(cell)
			case colFrom:
				if addrs := parseAddressList(cell); len(addrs) > 0 {
					e.From = addrs[0]
				}
			case colTo:
				e.To = append(e.To, parseAddressList(cell)...)
			case colDate:
				e.ReceivedAt = parseWhen(cell)
			case colBody:
				e.BodyPreview = strings.TrimSpace(cell)
			}
		}
		emails = append(emails, e)
	}
	return emails, nil
}

// ParseCalendar parses a calendar CSV export into event records.
func ParseCalendar(r io.Reader) ([]Event, error) {
	rows, roles, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		var ev Event
		for i, cell := range row {
			if i >= len(roles) {
				break
			}
			switch roles[i] {
			case colSubject:
				ev.Title = strings.TrimSpace(cell)
			case colFrom:
				if addrs := parseAddressList(cell); len(addrs) > 0 {
					ev.Organizer = addrs[0]
				}
			case colTo:
				ev.Attendees = append(ev.Attendees, parseAddressList(cell)...)
			case colDate:
				ev.StartsAt = parseWhen(cell)
			case colBody:
				ev.BodyPreview = strings.TrimSpace(cell)
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

// readCSV reads the header plus all data rows and classifies each column.
func readCSV(r io.Reader) ([][]string, []columnRole, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Outlook pads rows inconsistently

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.NewMalformedImport("CSV file is empty")
	}
	if err != nil {
		return nil, nil, errors.NewMalformedImport(fmt.Sprintf("unreadable CSV header: %v", err))
	}

	roles := make([]columnRole, len(header))
	known := 0
	for i, cell := range header {
		roles[i] = headerRole(cell)
		if roles[i] != colIgnore {
			known++
		}
	}
	if known == 0 {
		return nil, nil, errors.NewMalformedImport("no recognizable columns in CSV header")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.NewMalformedImport(fmt.Sprintf("unreadable CSV row: %v", err))
		}
		rows = append(rows, row)
	}
	return rows, roles, nil
}

// parseAddressList parses a semicolon- or comma-separated list of mailboxes
// in either `Name <addr>` or bare-address form. Tokens without an "@" are
// dropped.
func parseAddressList(s string) []Address {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool { return r == ';' })
	var out []Address
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if a, err := mail.ParseAddress(token); err == nil {
			out = append(out, Address{Name: a.Name, Addr: a.Address})
			continue
		}
		// Comma-separated lists only split cleanly when no display names
		// carry commas; try the whole token as a list before giving up.
		if list, err := mail.ParseAddressList(token); err == nil {
			for _, a := range list {
				out = append(out, Address{Name: a.Name, Addr: a.Address})
			}
			continue
		}
		if strings.Contains(token, "@") {
			out = append(out, Address{Addr: strings.Trim(token, "<> ")})
		}
	}
	return out
}

// whenLayouts are the date formats Outlook exports have been seen to use.
var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04",
}

// parseWhen normalizes a date cell to ISO-8601 UTC with millisecond
// precision, or "" when no layout matches. Callers fall back to the current
// instant for "".
func parseWhen(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02T15:04:05.000Z")
		}
	}
	return ""
}
