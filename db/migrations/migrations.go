package migrations

import "embed"

// FS embeds the SQL migration files in this directory; golang-migrate reads
// them through the iofs driver.
//
//go:embed *.sql
var FS embed.FS

// Version is the schema version Migrate targets.
const Version = 1
