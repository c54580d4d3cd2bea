package mapper

import (
	"time"

	"github.com/mesh-intelligence/almanac/internal/document"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// Map builds the complete Batch for one snapshot of doc. The only error is
// ErrInvalidPlaythrough; every document shape maps to some batch.
func Map(doc document.Node, playthroughID string, info types.SnapshotInfo) (types.Batch, error) {
	if err := types.ValidatePlaythroughID(playthroughID); err != nil {
		return types.Batch{}, err
	}

	snap := types.Snapshot{PlaythroughID: playthroughID, SaveDate: SaveDate(doc)}
	saveID := snap.SaveID()

	batch := types.Batch{
		Snapshot: snap,
		Save: types.Save{
			SaveID:     saveID,
			Filename:   info.Filename,
			SavedAt:    formatSavedAt(info.SavedAt),
			InGameDate: snap.SaveDate,
		},
	}

	entities := MapEntities(doc, CountryRegistry, CountryFields)
	batch.CountrySnapshots = countrySnapshots(playthroughID, snap.SaveDate, entities)

	known := make(map[string]bool, len(entities))
	for _, e := range entities {
		known[e.ID] = true
		batch.Countries = append(batch.Countries, types.Country{
			Tag:    e.ID,
			SaveID: saveID,
			Name:   firstString(e.Doc, countryNamePaths...),
		})
		batch.CountryMetrics = append(batch.CountryMetrics, countryMetrics(saveID, snap.SaveDate, e)...)
	}

	wars := mapWars(doc, saveID, known)
	batch.Wars = wars.wars
	batch.WarParticipants = wars.participants
	batch.Battles = wars.battles
	batch.Dropped = wars.dropped

	batch.RawSections = RawSections(doc)
	return batch, nil
}

// RawSections returns every top-level section of doc as compact JSON.
func RawSections(doc document.Node) []types.RawSection {
	var out []types.RawSection
	doc.Each(func(section string, payload document.Node) bool {
		out = append(out, types.RawSection{Section: section, Payload: payload.Compact()})
		return true
	})
	return out
}

func formatSavedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
