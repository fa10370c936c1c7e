package export

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/gift-registry/pkg/core/model"
)

const defaultRule = "DTSTART:20241210T000000Z\nRRULE:FREQ=YEARLY"

func TestDeliveryDeadline(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before the season deadline",
			now:  time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "on the deadline",
			now:  time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "after the deadline rolls to next year",
			now:  time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeliveryDeadline(defaultRule, tt.now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestDeliveryDeadline_Errors(t *testing.T) {
	_, err := DeliveryDeadline("NOT A RULE", time.Now())
	assert.Error(t, err)

	_, err = DeliveryDeadline("DTSTART:20241210T000000Z\nRRULE:FREQ=YEARLY;COUNT=1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no occurrence")
}

func TestOrdinalSuffix(t *testing.T) {
	cases := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 10: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 23: "rd", 31: "st"}
	for day, want := range cases {
		assert.Equal(t, want, ordinalSuffix(day), "day %d", day)
	}
	assert.Equal(t, "December 10th", deadlinePhrase(time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)))
}

func claimedGift() model.Gift {
	return model.Gift{
		ID:         "7",
		Item:       "Red Scarf",
		ClaimedBy:  "Pat",
		DeliverTo:  "Oak Ave",
		ShouldWrap: "TRUE",
		Other:      "Size M",
		URL:        `https://shop.example.com/scarf\?id=1`,
	}
}

func TestCalendar(t *testing.T) {
	ev := Event{
		UID:      "4f1c@subforsanta",
		Stamp:    time.Date(2024, 12, 1, 15, 4, 5, 0, time.UTC),
		Deadline: time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC),
	}

	out := string(Calendar(claimedGift(), ev))

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))

	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	required := []string{
		"VERSION:2.0",
		"PRODID:-//Sub-for-Santa//Gift Registry//EN",
		"UID:4f1c@subforsanta",
		"DTSTAMP:20241201T150405Z",
		"DTSTART:20241210T000000Z",
		"DTEND:20241210T010000Z",
		"SUMMARY:Deliver Red Scarf - Sub-for-Santa",
		`DESCRIPTION:Gift Item: Red Scarf\nDeliver to: Oak Ave\nStatus: Please deliver wrapped gift\nNotes: Size M\nProduct Link: https://shop.example.com/scarf?id=1\n`,
		"LOCATION:Oak Ave",
	}
	for _, s := range required {
		assert.Contains(t, unfolded, s)
	}

	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75, "line too long: %q", line)
	}
}

func TestCalendar_MissingOptionalFields(t *testing.T) {
	gift := model.Gift{ID: "2", Item: "Bike", ShouldWrap: "FALSE"}
	ev := Event{UID: "x", Name: "Winter Drive", Deadline: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)}

	out := strings.ReplaceAll(string(Calendar(gift, ev)), "\r\n ", "")

	assert.Contains(t, out, "SUMMARY:Deliver Bike - Winter Drive\r\n")
	assert.Contains(t, out, "LOCATION:TBD\r\n")
	assert.Contains(t, out, `DESCRIPTION:Gift Item: Bike\nDeliver to: N/A\nStatus: Please deliver unwrapped gift\n`+"\r\n")
	assert.NotContains(t, out, "Notes:")
	assert.NotContains(t, out, "Product Link:")
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `a\\b\;c\,d\ne`, escapeText("a\\b;c,d\ne"))
}

func TestWriteProp_FoldsWithoutSplittingRunes(t *testing.T) {
	var b strings.Builder
	value := strings.Repeat("é", 60)
	writeProp(&b, "SUMMARY", value)

	lines := strings.Split(strings.TrimSuffix(b.String(), "\r\n"), "\r\n")
	require.Greater(t, len(lines), 1)
	for i, line := range lines {
		assert.LessOrEqual(t, len(line), 75)
		if i > 0 {
			assert.True(t, strings.HasPrefix(line, " "))
		}
		assert.True(t, utf8.ValidString(line), "line %d split a rune", i)
	}
	assert.Equal(t, "SUMMARY:"+value, strings.ReplaceAll(strings.TrimSuffix(b.String(), "\r\n"), "\r\n ", ""))
}

func TestCalendarFileName(t *testing.T) {
	tests := []struct {
		item string
		want string
	}{
		{"Bike", "sub-for-santa-Bike.ics"},
		{"Red  Wool\tScarf", "sub-for-santa-Red-Wool-Scarf.ics"},
		{"AC/DC Poster", "sub-for-santa-AC-DC-Poster.ics"},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			assert.Equal(t, tt.want, CalendarFileName(model.Gift{Item: tt.item}))
		})
	}
}

func TestSummary(t *testing.T) {
	deadline := time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)

	t.Run("all fields", func(t *testing.T) {
		want := "Gift Details - Sub-for-Santa\n\n" +
			"Item: Red Scarf\n" +
			"Deliver to: Oak Ave\n" +
			"Please deliver the wrapped gift to Oak Ave by December 10th at the latest.\n\n" +
			"Additional Notes: Size M\n\n" +
			"Product Link: https://shop.example.com/scarf?id=1\n\n" +
			"Claimed by: Pat"
		assert.Equal(t, want, Summary(claimedGift(), deadline))
	})

	t.Run("sparse gift", func(t *testing.T) {
		gift := model.Gift{Item: "Bike", ClaimedBy: "Sam"}
		want := "Gift Details - Sub-for-Santa\n\n" +
			"Item: Bike\n" +
			"Deliver to: N/A\n" +
			"Please deliver the unwrapped gift to the specified location by December 10th at the latest.\n\n" +
			"\n\n\n" +
			"Claimed by: Sam"
		assert.Equal(t, want, Summary(gift, deadline))
	})

	t.Run("custom name", func(t *testing.T) {
		out := NamedSummary("Winter Drive", claimedGift(), deadline)
		assert.True(t, strings.HasPrefix(out, "Gift Details - Winter Drive\n"))
	})
}
