// This file implements the upsert writer: one transaction per snapshot batch.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// row is one statement execution with the key used to report failures.
type row struct {
	key  string
	args []any
}

// upsert describes how one table's rows are written. The order of upserts
// follows the foreign keys: parents before children.
var upserts = []struct {
	table string
	stmt  string
	rows  func(b types.Batch) []row
}{
	{
		table: types.TableSaves,
		stmt: `INSERT INTO Saves (save_id, filename, saved_at, in_game_date)
VALUES (?, ?, ?, ?)
ON CONFLICT(save_id) DO UPDATE SET
  filename = excluded.filename,
  saved_at = excluded.saved_at,
  in_game_date = excluded.in_game_date`,
		rows: func(b types.Batch) []row {
			s := b.Save
			return []row{{s.SaveID, []any{s.SaveID, s.Filename, s.SavedAt, s.InGameDate}}}
		},
	},
	{
		table: types.TableCountries,
		stmt: `INSERT INTO Countries (country_tag, save_id, name)
VALUES (?, ?, ?)
ON CONFLICT(country_tag, save_id) DO NOTHING`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.Countries))
			for i, c := range b.Countries {
				out[i] = row{c.Tag, []any{c.Tag, c.SaveID, c.Name}}
			}
			return out
		},
	},
	{
		table: types.TableCountrySnapshot,
		stmt: `INSERT INTO country_snapshot (
  playthrough_id, save_date, country_id, gdp, population, weekly_income,
  weekly_expenses, money, prestige, literacy, sol, infamy
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(playthrough_id, save_date, country_id) DO UPDATE SET
  gdp = excluded.gdp,
  population = excluded.population,
  weekly_income = excluded.weekly_income,
  weekly_expenses = excluded.weekly_expenses,
  money = excluded.money,
  prestige = excluded.prestige,
  literacy = excluded.literacy,
  sol = excluded.sol,
  infamy = excluded.infamy`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.CountrySnapshots))
			for i, c := range b.CountrySnapshots {
				out[i] = row{
					c.PlaythroughID + "/" + c.SaveDate + "/" + c.CountryID,
					[]any{
						c.PlaythroughID, c.SaveDate, c.CountryID, c.GDP, c.Population,
						c.WeeklyIncome, c.WeeklyExpenses, c.Money, c.Prestige,
						c.Literacy, c.SOL, c.Infamy,
					},
				}
			}
			return out
		},
	},
	{
		table: types.TableWars,
		stmt: `INSERT INTO Wars (war_id, save_id, started_on, ended_on, casus_belli, status)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(war_id) DO UPDATE SET
  save_id = excluded.save_id,
  started_on = excluded.started_on,
  ended_on = excluded.ended_on,
  casus_belli = excluded.casus_belli,
  status = excluded.status`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.Wars))
			for i, w := range b.Wars {
				out[i] = row{w.WarID, []any{w.WarID, w.SaveID, w.StartedOn, w.EndedOn, w.CasusBelli, w.Status}}
			}
			return out
		},
	},
	{
		table: types.TableBattles,
		stmt: `INSERT INTO Battles (
  battle_id, war_id, occurred_on, location, attacker_tag, defender_tag,
  attacker_cas, defender_cas, winner, save_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(battle_id) DO UPDATE SET
  war_id = excluded.war_id,
  occurred_on = excluded.occurred_on,
  location = excluded.location,
  attacker_tag = excluded.attacker_tag,
  defender_tag = excluded.defender_tag,
  attacker_cas = excluded.attacker_cas,
  defender_cas = excluded.defender_cas,
  winner = excluded.winner,
  save_id = excluded.save_id`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.Battles))
			for i, bt := range b.Battles {
				out[i] = row{bt.BattleID, []any{
					bt.BattleID, bt.WarID, bt.OccurredOn, bt.Location, bt.AttackerTag,
					bt.DefenderTag, bt.AttackerCasualties, bt.DefenderCasualties, bt.Winner, bt.SaveID,
				}}
			}
			return out
		},
	},
	{
		table: types.TableWarParticipants,
		stmt: `INSERT INTO War_Participants (war_id, country_tag, role, war_score, casualties, save_id)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(war_id, country_tag, role) DO UPDATE SET
  war_score = excluded.war_score,
  casualties = excluded.casualties,
  save_id = excluded.save_id`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.WarParticipants))
			for i, p := range b.WarParticipants {
				out[i] = row{p.WarID + "/" + p.CountryTag + "/" + p.Role, []any{p.WarID, p.CountryTag, p.Role, p.WarScore, p.Casualties, p.SaveID}}
			}
			return out
		},
	},
	{
		table: types.TableCountryMetrics,
		stmt: `INSERT INTO CountryMetrics (country_tag, name, amount, recorded_at, save_id)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(country_tag, save_id, name) DO UPDATE SET
  amount = excluded.amount,
  recorded_at = excluded.recorded_at`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.CountryMetrics))
			for i, m := range b.CountryMetrics {
				out[i] = row{m.CountryTag + "/" + m.Name, []any{m.CountryTag, m.Name, m.Amount, m.RecordedAt, m.SaveID}}
			}
			return out
		},
	},
	{
		table: types.TableRawJSON,
		stmt:  `INSERT OR REPLACE INTO raw_json (section, payload) VALUES (?, ?)`,
		rows: func(b types.Batch) []row {
			out := make([]row, len(b.RawSections))
			for i, s := range b.RawSections {
				out[i] = row{s.Section, []any{s.Section, s.Payload}}
			}
			return out
		},
	},
}

// Write commits batch as a single transaction. Every row is inserted or
// updated in place on its natural key; rows absent from the batch are left
// untouched. Country identity rows are never rewritten once inserted. Any
// failure rolls the whole batch back.
func (b *Backend) Write(ctx context.Context, batch types.Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := b.ensureSchemaLocked(ctx); err != nil {
		return err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin write transaction: %w", types.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	for _, u := range upserts {
		if err := execRows(ctx, tx, u.table, u.stmt, u.rows(batch)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("commit", batch.Save.SaveID, err)
	}
	return nil
}

// execRows runs stmt once per row using a prepared statement.
func execRows(ctx context.Context, tx *sql.Tx, table, stmt string, rows []row) error {
	if len(rows) == 0 {
		return nil
	}
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("%w: preparing insert for %s: %w", types.ErrStoreUnavailable, table, err)
	}
	defer prepared.Close()

	for _, r := range rows {
		if _, err := prepared.ExecContext(ctx, r.args...); err != nil {
			return classify(table, r.key, err)
		}
	}
	return nil
}
