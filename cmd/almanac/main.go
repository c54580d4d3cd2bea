// Command almanac ingests simulation save snapshots into a SQLite database.
package main

import "github.com/mesh-intelligence/almanac/internal/cli"

func main() {
	cli.Execute()
}
