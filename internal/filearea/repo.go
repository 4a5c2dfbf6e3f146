package filearea

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/notepid/dusk_bbs/internal/db"
)

var (
	// ErrAreaNotFound is returned when no area matches a reference.
	ErrAreaNotFound = errors.New("file area not found")
	// ErrListingNotFound is returned when a listing id does not exist.
	ErrListingNotFound = errors.New("file listing not found")
	// ErrDuplicateFilename is returned when an area already holds the filename.
	ErrDuplicateFilename = errors.New("filename already exists in this area")
)

// Repo handles database operations for file areas and listings.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new file area repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// ListAreas returns all file areas ordered by id.
func (r *Repo) ListAreas(ctx context.Context) ([]*Area, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.name, COALESCE(a.description, ''),
		       COALESCE((SELECT COUNT(*) FROM file_listings WHERE area_id = a.id), 0) as file_count
		FROM file_areas a
		ORDER BY a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list file areas: %w", err)
	}
	defer rows.Close()

	var areas []*Area
	for rows.Next() {
		a := &Area{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.FileCount); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// GetArea returns a single area by ID.
func (r *Repo) GetArea(ctx context.Context, id int) (*Area, error) {
	return r.scanArea(r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM file_areas WHERE id = ?
	`, id))
}

// AreaByName returns the area with exactly this name.
func (r *Repo) AreaByName(ctx context.Context, name string) (*Area, error) {
	return r.scanArea(r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM file_areas WHERE name = ?
	`, name))
}

func (r *Repo) scanArea(row *sql.Row) (*Area, error) {
	a := &Area{}
	err := row.Scan(&a.ID, &a.Name, &a.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAreaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file area: %w", err)
	}
	return a, nil
}

// FindArea resolves a numeric id or an exact area name.
func (r *Repo) FindArea(ctx context.Context, ref string) (*Area, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		a, err := r.GetArea(ctx, id)
		if !errors.Is(err, ErrAreaNotFound) {
			return a, err
		}
	}
	return r.AreaByName(ctx, ref)
}

// CreateArea adds a new file area.
func (r *Repo) CreateArea(ctx context.Context, name, description string) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO file_areas (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return 0, fmt.Errorf("create file area %s: %w", name, err)
	}
	id, err := result.LastInsertId()
	return int(id), err
}

// ListFiles returns the listings in an area ordered by filename.
func (r *Repo) ListFiles(ctx context.Context, areaID int) ([]*Listing, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.area_id, f.filename, COALESCE(f.description, ''),
		       f.uploader_user_id, COALESCE(u.username, 'Unknown') as uploader_name,
		       f.upload_date, f.download_count
		FROM file_listings f
		LEFT JOIN users u ON u.id = f.uploader_user_id
		WHERE f.area_id = ?
		ORDER BY f.filename
	`, areaID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var listings []*Listing
	for rows.Next() {
		l := &Listing{}
		if err := rows.Scan(&l.ID, &l.AreaID, &l.Filename, &l.Description,
			&l.UploaderID, &l.UploaderName, &l.UploadDate, &l.DownloadCount); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetListing returns a single listing by ID.
func (r *Repo) GetListing(ctx context.Context, id int) (*Listing, error) {
	l := &Listing{}
	err := r.db.QueryRowContext(ctx, `
		SELECT f.id, f.area_id, f.filename, COALESCE(f.description, ''),
		       f.uploader_user_id, COALESCE(u.username, 'Unknown') as uploader_name,
		       f.upload_date, f.download_count
		FROM file_listings f
		LEFT JOIN users u ON u.id = f.uploader_user_id
		WHERE f.id = ?
	`, id).Scan(&l.ID, &l.AreaID, &l.Filename, &l.Description,
		&l.UploaderID, &l.UploaderName, &l.UploadDate, &l.DownloadCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}
	return l, nil
}

// AddListing records a file in an area. The uniqueness check and the insert
// share one transaction.
func (r *Repo) AddListing(ctx context.Context, areaID int, filename, description string, uploaderID int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin add file: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM file_listings WHERE area_id = ? AND filename = ?
	`, areaID, filename).Scan(&count); err != nil {
		return 0, fmt.Errorf("check file %s: %w", filename, err)
	}
	if count > 0 {
		return 0, ErrDuplicateFilename
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO file_listings (area_id, filename, description, uploader_user_id, upload_date, download_count)
		VALUES (?, ?, ?, ?, ?, 0)
	`, areaID, filename, description, uploaderID, time.Now().UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrDuplicateFilename
		}
		return 0, fmt.Errorf("add file %s: %w", filename, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add file: %w", err)
	}
	return int(id), nil
}

// UpdateDescription overwrites a listing's description.
func (r *Repo) UpdateDescription(ctx context.Context, id int, description string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE file_listings SET description = ? WHERE id = ?", description, id)
	if err != nil {
		return fmt.Errorf("update file %d: %w", id, err)
	}
	return expectOne(res)
}

// IncrementDownload bumps the download count for a listing by one.
func (r *Repo) IncrementDownload(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE file_listings SET download_count = download_count + 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("count download %d: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}
