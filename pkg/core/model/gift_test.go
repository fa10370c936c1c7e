package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiftFromRecord_KeepsUnknownColumns(t *testing.T) {
	g := GiftFromRecord(map[string]string{
		"id":        "7",
		"item":      "Bike",
		"claimedBy": "",
		"age":       "9",
	})

	assert.Equal(t, "7", g.ID)
	assert.Equal(t, "Bike", g.Item)
	assert.Equal(t, map[string]string{"age": "9"}, g.Extra)

	record := g.Record()
	assert.Equal(t, "9", record["age"])
	assert.Equal(t, "", record[ColumnDeliverTo])
}

func TestGift_JSONIsFlat(t *testing.T) {
	g := Gift{ID: "3", Item: "Lego", Extra: map[string]string{"family": "B"}}

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var flat map[string]string
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "3", flat["id"])
	assert.Equal(t, "Lego", flat["item"])
	assert.Equal(t, "B", flat["family"])
	assert.Contains(t, flat, "claimedBy")
}

func TestGift_UnmarshalNonStringValues(t *testing.T) {
	var g Gift
	err := json.Unmarshal([]byte(`{"id": 3, "item": "Bike", "other": null}`), &g)
	require.NoError(t, err)

	assert.Equal(t, "3", g.ID)
	assert.Equal(t, "Bike", g.Item)
	assert.Equal(t, "", g.Other)
}

func TestGift_IsClaimed(t *testing.T) {
	tests := []struct {
		name      string
		claimedBy string
		expected  bool
	}{
		{"empty", "", false},
		{"whitespace only", "  \t", false},
		{"named", "Pat", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Gift{ClaimedBy: tt.claimedBy}.IsClaimed())
		})
	}
}

func TestGift_Wrap(t *testing.T) {
	assert.Equal(t, WrapYes, Gift{ShouldWrap: "TRUE"}.Wrap())
	assert.Equal(t, WrapNo, Gift{ShouldWrap: "FALSE"}.Wrap())
	assert.Equal(t, WrapUnknown, Gift{ShouldWrap: "true"}.Wrap())
	assert.Equal(t, WrapUnknown, Gift{}.Wrap())
}

func TestUnclaimed(t *testing.T) {
	gifts := []Gift{
		{ID: "2", ClaimedBy: ""},
		{ID: "3", ClaimedBy: "Sam"},
		{ID: "4", ClaimedBy: " "},
	}

	unclaimed := Unclaimed(gifts)
	require.Len(t, unclaimed, 2)
	assert.Equal(t, "2", unclaimed[0].ID)
	assert.Equal(t, "4", unclaimed[1].ID)
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a_b", CleanURL(`https://example.com/a\_b`))
}
