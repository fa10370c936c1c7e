package model

import (
	"encoding/json"
	"maps"
	"strings"
)

// Column names in the registry header row. Names are case-sensitive.
const (
	ColumnID          = "id"
	ColumnItem        = "item"
	ColumnClaimedBy   = "claimedBy"
	ColumnClaimedDate = "claimedDate"
	ColumnDeliverTo   = "deliverTo"
	ColumnShouldWrap  = "shouldWrap"
	ColumnPreviewURL  = "previewUrl"
	ColumnURL         = "url"
	ColumnOther       = "other"
)

// ClaimedDateLayout matches the ISO-8601 form browsers produce with toISOString.
const ClaimedDateLayout = "2006-01-02T15:04:05.000Z"

// WrapStatus is the tri-state shouldWrap column
type WrapStatus int

const (
	WrapUnknown WrapStatus = iota
	WrapYes
	WrapNo
)

// Gift is one registry row keyed by header name.
type Gift struct {
	ID          string
	Item        string
	ClaimedBy   string
	ClaimedDate string
	DeliverTo   string
	ShouldWrap  string
	PreviewURL  string
	URL         string
	Other       string

	// Extra holds columns the registry does not model, so they survive a
	// read/serve round trip.
	Extra map[string]string
}

// GiftFromRecord builds a Gift from a header → value mapping.
func GiftFromRecord(record map[string]string) Gift {
	g := Gift{}
	for key, value := range record {
		switch key {
		case ColumnID:
			g.ID = value
		case ColumnItem:
			g.Item = value
		case ColumnClaimedBy:
			g.ClaimedBy = value
		case ColumnClaimedDate:
			g.ClaimedDate = value
		case ColumnDeliverTo:
			g.DeliverTo = value
		case ColumnShouldWrap:
			g.ShouldWrap = value
		case ColumnPreviewURL:
			g.PreviewURL = value
		case ColumnURL:
			g.URL = value
		case ColumnOther:
			g.Other = value
		default:
			if g.Extra == nil {
				g.Extra = make(map[string]string)
			}
			g.Extra[key] = value
		}
	}
	return g
}

// Record returns the gift as a flat header → value mapping.
func (g Gift) Record() map[string]string {
	record := make(map[string]string, 9+len(g.Extra))
	maps.Copy(record, g.Extra)
	record[ColumnID] = g.ID
	record[ColumnItem] = g.Item
	record[ColumnClaimedBy] = g.ClaimedBy
	record[ColumnClaimedDate] = g.ClaimedDate
	record[ColumnDeliverTo] = g.DeliverTo
	record[ColumnShouldWrap] = g.ShouldWrap
	record[ColumnPreviewURL] = g.PreviewURL
	record[ColumnURL] = g.URL
	record[ColumnOther] = g.Other
	return record
}

// MarshalJSON encodes the gift as a flat string mapping.
func (g Gift) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Record())
}

// UnmarshalJSON decodes a flat mapping. Non-string values are kept in their
// JSON text form so numeric ids from older clients still resolve.
func (g *Gift) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	record := make(map[string]string, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			record[key] = s
			continue
		}
		if string(value) == "null" {
			record[key] = ""
			continue
		}
		record[key] = string(value)
	}

	*g = GiftFromRecord(record)
	return nil
}

// IsClaimed reports whether anyone's name is attached to the gift.
func (g Gift) IsClaimed() bool {
	return strings.TrimSpace(g.ClaimedBy) != ""
}

// Wrap returns the parsed shouldWrap column.
func (g Gift) Wrap() WrapStatus {
	switch g.ShouldWrap {
	case "TRUE":
		return WrapYes
	case "FALSE":
		return WrapNo
	default:
		return WrapUnknown
	}
}

// Equal reports whether two gifts carry the same values.
func (g Gift) Equal(other Gift) bool {
	return maps.Equal(g.Record(), other.Record())
}

// CleanURL strips the stray backslashes spreadsheets leave in pasted links.
func CleanURL(raw string) string {
	return strings.ReplaceAll(raw, `\`, "")
}

// FindGift returns the gift with the given id.
func FindGift(gifts []Gift, id string) (Gift, bool) {
	for _, g := range gifts {
		if g.ID == id {
			return g, true
		}
	}
	return Gift{}, false
}

// Unclaimed filters gifts down to those nobody has claimed.
func Unclaimed(gifts []Gift) []Gift {
	unclaimed := make([]Gift, 0, len(gifts))
	for _, g := range gifts {
		if !g.IsClaimed() {
			unclaimed = append(unclaimed, g)
		}
	}
	return unclaimed
}
