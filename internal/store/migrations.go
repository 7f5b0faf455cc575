package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Per-template compositing overrides. NULL columns inherit.
		`CREATE TABLE IF NOT EXISTS tuning_overrides (
			template_id TEXT PRIMARY KEY CHECK(template_id IN ('hero1', 'hero2')),
			mask_scale REAL,
			clip_scale REAL,
			scale REAL,
			offset_x REAL,
			offset_y REAL,
			remove_original INTEGER CHECK(remove_original IN (0, 1)),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
