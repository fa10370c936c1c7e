package commands

import (
	"fmt"
	"io"

	"github.com/jakechorley/gift-registry/pkg/core/model"
	"github.com/jakechorley/gift-registry/pkg/core/workflow"
)

func wrapLabel(g model.Gift) string {
	switch g.Wrap() {
	case model.WrapYes:
		return "wrapped"
	case model.WrapNo:
		return "unwrapped"
	default:
		return "wrap unknown"
	}
}

// giftLine renders one gift for list output
func giftLine(g model.Gift) string {
	line := fmt.Sprintf("[%s] %s (%s)", g.ID, g.Item, wrapLabel(g))
	if g.DeliverTo != "" {
		line += " → " + g.DeliverTo
	}
	return line
}

func printGifts(w io.Writer, view workflow.View) {
	if len(view.MyClaims) > 0 {
		fmt.Fprintf(w, "\nYour Claimed Gifts (%d):\n", len(view.MyClaims))
		for _, g := range view.MyClaims {
			fmt.Fprintf(w, "  ✓ %s\n", giftLine(g))
		}
	}

	if msg := view.EmptyMessage(); msg != "" {
		fmt.Fprintf(w, "\n%s\n\n", msg)
		return
	}

	fmt.Fprintf(w, "\nAvailable Gifts (%d):\n", len(view.Visible))
	for _, g := range view.Visible {
		fmt.Fprintf(w, "  - %s\n", giftLine(g))
	}
	fmt.Fprintln(w)
}

func printConfirmation(w io.Writer, g model.Gift) {
	deliverTo := g.DeliverTo
	if deliverTo == "" {
		deliverTo = "N/A"
	}

	fmt.Fprintf(w, "\n🎁 %s\n", g.Item)
	fmt.Fprintf(w, "   Claimed by:  %s\n", g.ClaimedBy)
	fmt.Fprintf(w, "   Deliver to:  %s\n", deliverTo)
	fmt.Fprintf(w, "   Wrapping:    %s\n", wrapLabel(g))
	if g.Other != "" {
		fmt.Fprintf(w, "   Notes:       %s\n", g.Other)
	}
	if g.URL != "" {
		fmt.Fprintf(w, "   Product:     %s\n", model.CleanURL(g.URL))
	}
	if g.PreviewURL != "" {
		fmt.Fprintf(w, "   Preview:     %s\n", model.CleanURL(g.PreviewURL))
	}
	fmt.Fprintln(w)
}
