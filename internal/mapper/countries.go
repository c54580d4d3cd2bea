package mapper

import (
	"github.com/mesh-intelligence/almanac/internal/document"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// CountryRegistry is where the decoder places the country database.
var CountryRegistry = document.ParsePath("country_manager.database")

// Country attribute names, also used as CountryMetrics names.
const (
	FieldGDP            = "gdp"
	FieldPopulation     = "population"
	FieldWeeklyIncome   = "weekly_income"
	FieldWeeklyExpenses = "weekly_expenses"
	FieldMoney          = "money"
	FieldPrestige       = "prestige"
	FieldLiteracy       = "literacy"
	FieldSOL            = "sol"
	FieldInfamy         = "infamy"
)

// CountryFields lists the country_snapshot attributes in column order.
// Money is read from the budget first, then from the country itself.
var CountryFields = []Field{
	{Name: FieldGDP, Paths: paths("gdp")},
	{Name: FieldPopulation, Paths: paths("population")},
	{Name: FieldWeeklyIncome, Paths: paths("budget.weekly_income")},
	{Name: FieldWeeklyExpenses, Paths: paths("budget.weekly_expenses")},
	{Name: FieldMoney, Paths: paths("budget.money", "money")},
	{Name: FieldPrestige, Paths: paths("prestige")},
	{Name: FieldLiteracy, Paths: paths("literacy")},
	{Name: FieldSOL, Paths: paths("sol")},
	{Name: FieldInfamy, Paths: paths("infamy")},
}

// saveDatePaths is the save_date fallback chain: metadata date, then the
// top-level game date. Neither present means an empty date.
var saveDatePaths = paths("meta.date", "game_date")

// countryNamePaths is where a country's display name may be found.
var countryNamePaths = paths("definition", "name")

// SaveDate returns the in-game date of doc: the first non-empty value along
// the fallback chain, or "" when none is present.
func SaveDate(doc document.Node) string {
	return firstString(doc, saveDatePaths...)
}

// countrySnapshots builds one country_snapshot row per entity.
func countrySnapshots(playthroughID, saveDate string, entities []Entity) []types.CountrySnapshot {
	out := make([]types.CountrySnapshot, 0, len(entities))
	for _, e := range entities {
		out = append(out, countrySnapshot(playthroughID, saveDate, e))
	}
	return out
}

func countrySnapshot(playthroughID, saveDate string, e Entity) types.CountrySnapshot {
	v := e.Values
	return types.CountrySnapshot{
		PlaythroughID:  playthroughID,
		SaveDate:       saveDate,
		CountryID:      e.ID,
		GDP:            v[FieldGDP],
		Population:     v[FieldPopulation],
		WeeklyIncome:   v[FieldWeeklyIncome],
		WeeklyExpenses: v[FieldWeeklyExpenses],
		Money:          v[FieldMoney],
		Prestige:       v[FieldPrestige],
		Literacy:       v[FieldLiteracy],
		SOL:            v[FieldSOL],
		Infamy:         v[FieldInfamy],
	}
}

// countryMetrics flattens an entity's attributes into long-form rows.
func countryMetrics(saveID, saveDate string, e Entity) []types.CountryMetric {
	out := make([]types.CountryMetric, 0, len(CountryFields))
	for _, f := range CountryFields {
		out = append(out, types.CountryMetric{
			CountryTag: e.ID,
			SaveID:     saveID,
			Name:       f.Name,
			Amount:     e.Values[f.Name],
			RecordedAt: saveDate,
		})
	}
	return out
}
