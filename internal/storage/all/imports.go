// Package all registers every built-in storage backend ("mssql", "mysql",
// "postgres", "sqlite") with the storage factory. Import it for side effects.
package all

import (
	_ "campaignetl/internal/storage/mssql"
	_ "campaignetl/internal/storage/mysql"
	_ "campaignetl/internal/storage/postgres"
	_ "campaignetl/internal/storage/sqlite"
)
