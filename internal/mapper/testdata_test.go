package mapper

// fraDocument is the single-country document used across tests.
const fraDocument = `{
	"country_manager": {"database": {"FRA": {
		"gdp": 120.5,
		"population": 3000000,
		"budget": {"weekly_income": [50.0], "weekly_expenses": [40.0]},
		"prestige": 10
	}}},
	"game_date": "1836.1.1"
}`

// warDocument carries two countries, one war with participants in every
// supported shape, and battles including one against an unknown country.
const warDocument = `{
	"meta": {"date": "1840.5.1"},
	"country_manager": {"database": {
		"FRA": {"definition": "France", "gdp": 200},
		"GBR": {"name": "Great Britain", "gdp": 300},
		"BEL": {"gdp": 20},
		"7": "none"
	}},
	"war_manager": {"database": {
		"12": {
			"start_date": "1839.1.1",
			"war_goal": {"type": "conquer_state"},
			"attackers": ["FRA", {"country": "BEL", "war_score": 12.5, "casualties": 300}, "XXX"],
			"defenders": {"GBR": {"score": -12.5, "losses": 900}},
			"battles": {
				"1": {"date": "1839.6.1", "province": "Calais", "attacker": "FRA", "defender": "GBR",
				      "attacker_losses": 100, "defender_casualties": [250], "winner": "attacker"},
				"2": {"date": "1839.7.1", "attacker": "FRA", "defender": "XXX"}
			}
		},
		"13": {"start_date": "1830.1.1", "end_date": "1831.1.1", "casus_belli": "humiliate",
		       "attackers": {"0": "GBR"}, "defenders": "BEL"},
		"14": "none"
	}}
}`
