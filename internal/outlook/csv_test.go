package outlook

import (
	"strings"
	"testing"

	"github.com/tylertestin/InnovationAward/internal/errors"
)

func TestParseInbox(t *testing.T) {
	csv := strings.Join([]string{
		`Subject,From,To,Received,Body Preview`,
		`Kickoff,"Jane Doe <jane@acme.com>","Bob <bob@acme.com>; carol@acme.com",2024-01-05T10:00:00Z,Agenda attached`,
	}, "\n")

	emails, err := ParseInbox(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseInbox failed: %v", err)
	}
	if len(emails) != 1 {
		t.Fatalf("len(emails) = %d, want 1", len(emails))
	}

	e := emails[0]
	if e.Subject != "Kickoff" {
		t.Errorf("Subject = %q", e.Subject)
	}
	if e.From.Name != "Jane Doe" || e.From.Addr != "jane@acme.com" {
		t.Errorf("From = %+v", e.From)
	}
	if len(e.To) != 2 || e.To[0].Addr != "bob@acme.com" || e.To[1].Addr != "carol@acme.com" {
		t.Errorf("To = %+v", e.To)
	}
	if e.ReceivedAt != "2024-01-05T10:00:00.000Z" {
		t.Errorf("ReceivedAt = %q", e.ReceivedAt)
	}
	if e.BodyPreview != "Agenda attached" {
		t.Errorf("BodyPreview = %q", e.BodyPreview)
	}
}

func TestParseInbox_HeaderVariants(t *testing.T) {
	csv := strings.Join([]string{
		`Betreff Subject,Sender Email,Recipients,Date Sent`,
		`Hello,jane@acme.com,bob@acme.com,1/5/2024 10:00 AM`,
	}, "\n")

	emails, err := ParseInbox(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseInbox failed: %v", err)
	}
	e := emails[0]
	if e.Subject != "Hello" || e.From.Addr != "jane@acme.com" || len(e.To) != 1 {
		t.Errorf("fuzzy header mapping failed: %+v", e)
	}
	if e.ReceivedAt != "2024-01-05T10:00:00.000Z" {
		t.Errorf("ReceivedAt = %q", e.ReceivedAt)
	}
}

func TestParseInbox_UnparseableDateIsEmpty(t *testing.T) {
	csv := "Subject,From,Received\nHello,jane@acme.com,sometime last week\n"
	emails, err := ParseInbox(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseInbox failed: %v", err)
	}
	if emails[0].ReceivedAt != "" {
		t.Errorf("ReceivedAt = %q, want empty", emails[0].ReceivedAt)
	}
}

func TestParseInbox_Malformed(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"no recognizable columns", "Foo,Bar,Baz\n1,2,3\n"},
		{"bad quoting", "Subject,From\n\"unterminated,jane@acme.com\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInbox(strings.NewReader(tt.csv))
			if !errors.Is(err, errors.ErrMalformedImport) {
				t.Errorf("want ErrMalformedImport, got %v", err)
			}
		})
	}
}

func TestParseCalendar(t *testing.T) {
	csv := strings.Join([]string{
		`Title,Organizer,Attendees,Start Date,Description`,
		`Review,"Jane <jane@acme.com>","bob@acme.com; Carol <carol@bcg.com>",2024-02-01 09:30:00,Quarterly review`,
	}, "\n")

	events, err := ParseCalendar(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCalendar failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}

	ev := events[0]
	if ev.Title != "Review" {
		t.Errorf("Title = %q", ev.Title)
	}
	if ev.Organizer.Addr != "jane@acme.com" {
		t.Errorf("Organizer = %+v", ev.Organizer)
	}
	if len(ev.Attendees) != 2 || ev.Attendees[1].Name != "Carol" {
		t.Errorf("Attendees = %+v", ev.Attendees)
	}
	if ev.StartsAt != "2024-02-01T09:30:00.000Z" {
		t.Errorf("StartsAt = %q", ev.StartsAt)
	}
	if ev.BodyPreview != "Quarterly review" {
		t.Errorf("BodyPreview = %q", ev.BodyPreview)
	}
}

func TestParseAddressList(t *testing.T) {
	tests := []struct {
		in   string
		want []Address
	}{
		{"Jane Doe <jane@acme.com>", []Address{{Name: "Jane Doe", Addr: "jane@acme.com"}}},
		{"jane@acme.com", []Address{{Addr: "jane@acme.com"}}},
		{"a@x.com; b@x.com", []Address{{Addr: "a@x.com"}, {Addr: "b@x.com"}}},
		{"<jane@acme.com>", []Address{{Addr: "jane@acme.com"}}},
		{"no address here", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseAddressList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseAddressList(%q) = %+v, want %+v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i].Addr != tt.want[i].Addr {
				t.Errorf("parseAddressList(%q)[%d].Addr = %q, want %q", tt.in, i, got[i].Addr, tt.want[i].Addr)
			}
		}
	}
}

func TestParseWhen(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-05T10:00:00Z", "2024-01-05T10:00:00.000Z"},
		{"1/5/2024 10:00:00 AM", "2024-01-05T10:00:00.000Z"},
		{"1/5/2024", "2024-01-05T00:00:00.000Z"},
		{"2024-01-05 10:00:00", "2024-01-05T10:00:00.000Z"},
		{"garbage", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseWhen(tt.in); got != tt.want {
			t.Errorf("parseWhen(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
