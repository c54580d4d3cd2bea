package mapper

import (
	"github.com/mesh-intelligence/almanac/internal/document"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// WarRegistry is where the decoder places the war database.
var WarRegistry = document.ParsePath("war_manager.database")

var (
	warStartPaths      = paths("start_date")
	warEndPaths        = paths("end_date")
	warCasusBelliPaths = paths("casus_belli", "war_goal.type", "war_goal")
	participantTags    = paths("country", "tag")
	battleDatePaths    = paths("date")
	battleLocPaths     = paths("location", "province")
)

var participantFields = []Field{
	{Name: "war_score", Paths: paths("war_score", "score")},
	{Name: "casualties", Paths: paths("casualties", "losses")},
}

var battleFields = []Field{
	{Name: "attacker_cas", Paths: paths("attacker_casualties", "attacker_losses")},
	{Name: "defender_cas", Paths: paths("defender_casualties", "defender_losses")},
}

// warSides maps participant list keys to the role recorded for them.
var warSides = []struct {
	key  string
	role string
}{
	{"attackers", types.RoleAttacker},
	{"defenders", types.RoleDefender},
}

// warRows holds everything mapped from the war registry.
type warRows struct {
	wars         []types.War
	participants []types.WarParticipant
	battles      []types.Battle
	dropped      int
}

// mapWars extracts wars with their participants and battles. Participants
// and battles that name a country missing from known are dropped and
// counted, since their foreign keys could never be satisfied.
func mapWars(doc document.Node, saveID string, known map[string]bool) warRows {
	var rows warRows
	doc.Lookup(WarRegistry).Each(func(key string, w document.Node) bool {
		if w.Kind() != document.Mapping {
			return true
		}
		war := types.War{
			WarID:      saveID + "/" + key,
			SaveID:     saveID,
			StartedOn:  firstString(w, warStartPaths...),
			EndedOn:    firstString(w, warEndPaths...),
			CasusBelli: firstString(w, warCasusBelliPaths...),
			Status:     types.WarStatusActive,
		}
		if war.EndedOn != "" {
			war.Status = types.WarStatusEnded
		}
		rows.wars = append(rows.wars, war)

		for _, side := range warSides {
			for _, p := range participants(w.Get(side.key)) {
				if !known[p.tag] {
					rows.dropped++
					continue
				}
				rows.participants = append(rows.participants, types.WarParticipant{
					WarID:      war.WarID,
					SaveID:     saveID,
					CountryTag: p.tag,
					Role:       side.role,
					WarScore:   p.values["war_score"],
					Casualties: p.values["casualties"],
				})
			}
		}

		w.Get("battles").Each(func(bkey string, b document.Node) bool {
			if b.Kind() != document.Mapping {
				return true
			}
			attacker := document.ExtractString(b, document.Path{"attacker"}, "")
			defender := document.ExtractString(b, document.Path{"defender"}, "")
			if !known[attacker] || !known[defender] {
				rows.dropped++
				return true
			}
			v := extractFields(b, battleFields)
			rows.battles = append(rows.battles, types.Battle{
				BattleID:           war.WarID + "/" + bkey,
				WarID:              war.WarID,
				SaveID:             saveID,
				OccurredOn:         firstString(b, battleDatePaths...),
				Location:           firstString(b, battleLocPaths...),
				AttackerTag:        attacker,
				DefenderTag:        defender,
				AttackerCasualties: v["attacker_cas"],
				DefenderCasualties: v["defender_cas"],
				Winner:             document.ExtractString(b, document.Path{"winner"}, ""),
			})
			return true
		})
		return true
	})
	return rows
}

type participant struct {
	tag    string
	values map[string]float64
}

// participants normalizes the shapes a side list is found in: a single tag,
// a sequence of tags or participant mappings, or a mapping whose values are
// tags or participant mappings keyed by tag.
func participants(side document.Node) []participant {
	var out []participant
	add := func(fallbackTag string, n document.Node) {
		switch n.Kind() {
		case document.Scalar:
			out = append(out, participant{tag: document.String(n, ""), values: map[string]float64{}})
		case document.Mapping:
			tag := firstString(n, participantTags...)
			if tag == "" {
				tag = fallbackTag
			}
			out = append(out, participant{tag: tag, values: extractFields(n, participantFields)})
		}
	}

	switch side.Kind() {
	case document.Scalar:
		add("", side)
	case document.Sequence:
		for _, e := range side.Elements() {
			add("", e)
		}
	case document.Mapping:
		side.Each(func(key string, v document.Node) bool {
			add(key, v)
			return true
		})
	}
	return out
}
