// Package export renders a claimed gift as a calendar reminder or a plain
// text summary. Writing files, the clipboard and email are left to callers.
package export

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jakechorley/gift-registry/pkg/core/model"
)

const (
	prodID        = "-//Sub-for-Santa//Gift Registry//EN"
	eventDuration = time.Hour
	maxLineOctets = 75
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Event holds the per-export values that are not part of the gift
type Event struct {
	UID      string
	Stamp    time.Time
	Deadline time.Time
	// Name labels the event; DefaultEventName when empty
	Name string
}

// Calendar renders a single-event VCALENDAR reminding the claimant to
// deliver the gift. The event starts at the deadline and lasts one hour.
func Calendar(gift model.Gift, ev Event) []byte {
	name := ev.Name
	if name == "" {
		name = DefaultEventName
	}

	location := gift.DeliverTo
	if location == "" {
		location = "TBD"
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	writeProp(&b, "VERSION", "2.0")
	writeProp(&b, "PRODID", prodID)
	b.WriteString("BEGIN:VEVENT\r\n")
	writeProp(&b, "UID", ev.UID)
	writeProp(&b, "DTSTAMP", formatDateTime(ev.Stamp))
	writeProp(&b, "DTSTART", formatDateTime(ev.Deadline))
	writeProp(&b, "DTEND", formatDateTime(ev.Deadline.Add(eventDuration)))
	writeProp(&b, "SUMMARY", escapeText("Deliver "+gift.Item+" - "+name))
	writeProp(&b, "DESCRIPTION", escapeText(calendarDescription(gift)))
	writeProp(&b, "LOCATION", escapeText(location))
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")

	return []byte(b.String())
}

// CalendarFileName names the downloaded calendar file after the item
func CalendarFileName(gift model.Gift) string {
	item := whitespaceRun.ReplaceAllString(gift.Item, "-")
	item = strings.NewReplacer("/", "-", `\`, "-").Replace(item)
	return "sub-for-santa-" + item + ".ics"
}

func calendarDescription(gift model.Gift) string {
	deliverTo := gift.DeliverTo
	if deliverTo == "" {
		deliverTo = "N/A"
	}

	var b strings.Builder
	b.WriteString("Gift Item: " + gift.Item + "\n")
	b.WriteString("Deliver to: " + deliverTo + "\n")
	b.WriteString("Status: Please deliver " + wrapWord(gift) + " gift\n")
	if gift.Other != "" {
		b.WriteString("Notes: " + gift.Other + "\n")
	}
	if gift.URL != "" {
		b.WriteString("Product Link: " + model.CleanURL(gift.URL) + "\n")
	}
	return b.String()
}

func wrapWord(gift model.Gift) string {
	if gift.Wrap() == model.WrapYes {
		return "wrapped"
	}
	return "unwrapped"
}

// writeProp writes one content line folded at 75 octets. Continuation lines
// start with a space and never split a UTF-8 sequence.
func writeProp(b *strings.Builder, name, value string) {
	line := name + ":" + value
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeText escapes TEXT values per RFC 5545 section 3.3.11
func escapeText(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	).Replace(s)
}
