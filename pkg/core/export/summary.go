package export

import (
	"strings"
	"time"

	"github.com/jakechorley/gift-registry/pkg/core/model"
)

// Summary renders the shareable text block for a claimed gift
func Summary(gift model.Gift, deadline time.Time) string {
	return NamedSummary(DefaultEventName, gift, deadline)
}

// NamedSummary is Summary with a custom event name in the heading
func NamedSummary(name string, gift model.Gift, deadline time.Time) string {
	deliverTo := gift.DeliverTo
	if deliverTo == "" {
		deliverTo = "N/A"
	}
	destination := gift.DeliverTo
	if destination == "" {
		destination = "the specified location"
	}

	var b strings.Builder
	b.WriteString("Gift Details - " + name + "\n\n")
	b.WriteString("Item: " + gift.Item + "\n")
	b.WriteString("Deliver to: " + deliverTo + "\n")
	b.WriteString("Please deliver the " + wrapWord(gift) + " gift to " + destination +
		" by " + deadlinePhrase(deadline) + " at the latest.\n\n")
	if gift.Other != "" {
		b.WriteString("Additional Notes: " + gift.Other + "\n")
	}
	b.WriteString("\n")
	if gift.URL != "" {
		b.WriteString("Product Link: " + model.CleanURL(gift.URL))
	}
	b.WriteString("\n\nClaimed by: " + gift.ClaimedBy)

	return b.String()
}
