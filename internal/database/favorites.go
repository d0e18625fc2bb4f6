package database

import (
	"database/sql"
	"fmt"

	"aptrack/server/internal/models"
)

// AddFavorite stores a tracked complex. Re-adding an existing complex
// reactivates it and refreshes its metadata instead of failing.
func (d *Database) AddFavorite(f models.Favorite) (int64, error) {
	res, err := d.db.Exec(`
		INSERT INTO favorite_apartments
		(apt_name, region_code, region_name, apt_seq,
		 road_name, road_name_bonbun, road_name_bubun, umd_nm,
		 build_year, exclusive_area, notes, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(apt_name, region_code) DO UPDATE SET
			region_name = excluded.region_name,
			apt_seq = excluded.apt_seq,
			road_name = excluded.road_name,
			road_name_bonbun = excluded.road_name_bonbun,
			road_name_bubun = excluded.road_name_bubun,
			umd_nm = excluded.umd_nm,
			build_year = excluded.build_year,
			exclusive_area = excluded.exclusive_area,
			notes = excluded.notes,
			is_active = 1,
			updated_at = CURRENT_TIMESTAMP
	`, f.AptName, f.RegionCode, f.RegionName, f.AptSeq,
		f.RoadName, f.RoadNameBon, f.RoadNameBu, f.DongName,
		f.BuildYear, f.ExclusiveArea, f.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to add favorite: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		row := d.db.QueryRow(`SELECT id FROM favorite_apartments WHERE apt_name = ? AND region_code = ?`,
			f.AptName, f.RegionCode)
		if scanErr := row.Scan(&id); scanErr != nil {
			return 0, scanErr
		}
	}
	return id, nil
}

// GetFavorites returns all active favorites, newest first.
func (d *Database) GetFavorites() ([]models.Favorite, error) {
	rows, err := d.db.Query(`
		SELECT id, apt_name, region_code, COALESCE(region_name, ''),
		       COALESCE(apt_seq, ''), COALESCE(road_name, ''),
		       COALESCE(road_name_bonbun, ''), COALESCE(road_name_bubun, ''),
		       COALESCE(umd_nm, ''), COALESCE(build_year, 0),
		       COALESCE(exclusive_area, 0), COALESCE(notes, ''),
		       is_active, created_at, updated_at
		FROM favorite_apartments
		WHERE is_active = 1
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// GetFavorite returns one favorite by id, or nil when it does not exist.
func (d *Database) GetFavorite(id int64) (*models.Favorite, error) {
	rows, err := d.db.Query(`
		SELECT id, apt_name, region_code, COALESCE(region_name, ''),
		       COALESCE(apt_seq, ''), COALESCE(road_name, ''),
		       COALESCE(road_name_bonbun, ''), COALESCE(road_name_bubun, ''),
		       COALESCE(umd_nm, ''), COALESCE(build_year, 0),
		       COALESCE(exclusive_area, 0), COALESCE(notes, ''),
		       is_active, created_at, updated_at
		FROM favorite_apartments
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	f, err := scanFavorite(rows)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// IsFavorite reports whether a complex is currently tracked.
func (d *Database) IsFavorite(aptName, regionCode string) (bool, error) {
	row := d.db.QueryRow(`
		SELECT COUNT(*) FROM favorite_apartments
		WHERE apt_name = ? AND region_code = ? AND is_active = 1
	`, aptName, regionCode)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFavoriteNotes replaces the notes of one favorite.
func (d *Database) UpdateFavoriteNotes(id int64, notes string) error {
	res, err := d.db.Exec(`
		UPDATE favorite_apartments SET notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, notes, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteFavorite deactivates a favorite. Rows are kept so historical alert
// context survives an accidental delete.
func (d *Database) DeleteFavorite(id int64) error {
	res, err := d.db.Exec(`
		UPDATE favorite_apartments SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanFavorite(rows *sql.Rows) (models.Favorite, error) {
	var f models.Favorite
	var isActive int
	err := rows.Scan(
		&f.ID, &f.AptName, &f.RegionCode, &f.RegionName,
		&f.AptSeq, &f.RoadName, &f.RoadNameBon, &f.RoadNameBu,
		&f.DongName, &f.BuildYear, &f.ExclusiveArea, &f.Notes,
		&isActive, &f.CreatedAt, &f.UpdatedAt,
	)
	f.IsActive = isActive != 0
	return f, err
}
