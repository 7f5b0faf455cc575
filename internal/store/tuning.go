package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/heroswap/internal/tuning"
)

// TuningRecord is a stored override for one template.
type TuningRecord struct {
	TemplateID tuning.TemplateID
	Override   tuning.Override
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TuningRepository provides CRUD operations for tuning overrides.
type TuningRepository struct {
	db *sql.DB
}

// Tuning returns the tuning repository for this store.
func (s *Store) Tuning() *TuningRepository {
	return &TuningRepository{db: s.db}
}

const tuningColumns = `template_id, mask_scale, clip_scale, scale, offset_x, offset_y, remove_original, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTuning(row rowScanner) (*TuningRecord, error) {
	var (
		rec                                 TuningRecord
		id                                  string
		mask, clip, scale, offsetX, offsetY sql.NullFloat64
		remove                              sql.NullBool
	)
	if err := row.Scan(&id, &mask, &clip, &scale, &offsetX, &offsetY, &remove, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.TemplateID = tuning.TemplateID(id)
	rec.Override = tuning.Override{
		MaskScale:      nullFloat(mask),
		ClipScale:      nullFloat(clip),
		UniformScale:   nullFloat(scale),
		OffsetX:        nullFloat(offsetX),
		OffsetY:        nullFloat(offsetY),
		RemoveOriginal: nullBool(remove),
	}
	return &rec, nil
}

// Get retrieves the override for id.
func (r *TuningRepository) Get(id tuning.TemplateID) (*TuningRecord, error) {
	rec, err := scanTuning(r.db.QueryRow(
		`SELECT `+tuningColumns+` FROM tuning_overrides WHERE template_id = ?`,
		string(id),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Lookup implements tuning.Source.
func (r *TuningRepository) Lookup(id tuning.TemplateID) (tuning.Override, bool, error) {
	rec, err := r.Get(id)
	if errors.Is(err, ErrNotFound) {
		return tuning.Override{}, false, nil
	}
	if err != nil {
		return tuning.Override{}, false, err
	}
	return rec.Override, true, nil
}

// List retrieves every stored override ordered by template id.
func (r *TuningRepository) List() ([]*TuningRecord, error) {
	rows, err := r.db.Query(`SELECT ` + tuningColumns + ` FROM tuning_overrides ORDER BY template_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*TuningRecord
	for rows.Next() {
		rec, err := scanTuning(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Upsert stores o for id, merging with any existing override so that fields
// absent from o are kept.
func (r *TuningRepository) Upsert(id tuning.TemplateID, o tuning.Override) (*TuningRecord, error) {
	now := time.Now()
	_, err := r.db.Exec(
		`INSERT INTO tuning_overrides (template_id, mask_scale, clip_scale, scale, offset_x, offset_y, remove_original, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(template_id) DO UPDATE SET
			mask_scale = COALESCE(excluded.mask_scale, mask_scale),
			clip_scale = COALESCE(excluded.clip_scale, clip_scale),
			scale = COALESCE(excluded.scale, scale),
			offset_x = COALESCE(excluded.offset_x, offset_x),
			offset_y = COALESCE(excluded.offset_y, offset_y),
			remove_original = COALESCE(excluded.remove_original, remove_original),
			updated_at = excluded.updated_at`,
		string(id),
		floatArg(o.MaskScale), floatArg(o.ClipScale), floatArg(o.UniformScale),
		floatArg(o.OffsetX), floatArg(o.OffsetY), boolArg(o.RemoveOriginal),
		now, now,
	)
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

// Delete removes the override for id.
func (r *TuningRepository) Delete(id tuning.TemplateID) error {
	result, err := r.db.Exec(`DELETE FROM tuning_overrides WHERE template_id = ?`, string(id))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolArg(v *bool) any {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}
