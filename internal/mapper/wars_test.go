package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/almanac/internal/document"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

func TestMapWars(t *testing.T) {
	doc := document.MustParse(warDocument)
	known := map[string]bool{"FRA": true, "GBR": true, "BEL": true}
	rows := mapWars(doc, "S", known)

	t.Run("wars in registry order with tombstones skipped", func(t *testing.T) {
		require.Len(t, rows.wars, 2)
		assert.Equal(t, types.War{
			WarID:      "S/12",
			SaveID:     "S",
			StartedOn:  "1839.1.1",
			CasusBelli: "conquer_state",
			Status:     types.WarStatusActive,
		}, rows.wars[0])
		assert.Equal(t, "S/13", rows.wars[1].WarID)
		assert.Equal(t, "humiliate", rows.wars[1].CasusBelli)
		assert.Equal(t, types.WarStatusEnded, rows.wars[1].Status)
	})

	t.Run("participants from every side shape", func(t *testing.T) {
		require.Len(t, rows.participants, 5)

		byKey := make(map[string]types.WarParticipant)
		for _, p := range rows.participants {
			byKey[p.WarID+"|"+p.CountryTag+"|"+p.Role] = p
		}

		assert.Contains(t, byKey, "S/12|FRA|attacker")
		bel := byKey["S/12|BEL|attacker"]
		assert.Equal(t, 12.5, bel.WarScore)
		assert.Equal(t, 300.0, bel.Casualties)

		gbr := byKey["S/12|GBR|defender"]
		assert.Equal(t, -12.5, gbr.WarScore)
		assert.Equal(t, 900.0, gbr.Casualties)

		assert.Contains(t, byKey, "S/13|GBR|attacker", "tag used as a mapping value")
		assert.Contains(t, byKey, "S/13|BEL|defender", "single scalar tag")
	})

	t.Run("battles against unknown countries are dropped", func(t *testing.T) {
		require.Len(t, rows.battles, 1)
		assert.Equal(t, types.Battle{
			BattleID:           "S/12/1",
			WarID:              "S/12",
			SaveID:             "S",
			OccurredOn:         "1839.6.1",
			Location:           "Calais",
			AttackerTag:        "FRA",
			DefenderTag:        "GBR",
			AttackerCasualties: 100,
			DefenderCasualties: 250,
			Winner:             "attacker",
		}, rows.battles[0])
	})

	t.Run("dropped counts unknown participants and battles", func(t *testing.T) {
		assert.Equal(t, 2, rows.dropped)
	})
}

func TestParticipantsEmptySide(t *testing.T) {
	doc := document.MustParse(`{"a":[],"b":{},"c":{"x":1}}`)
	assert.Empty(t, participants(doc.Get("a")))
	assert.Empty(t, participants(doc.Get("b")))
	assert.Empty(t, participants(doc.Get("missing")))

	got := participants(doc.Get("c"))
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].tag, "scalar values are read as tags")
}
