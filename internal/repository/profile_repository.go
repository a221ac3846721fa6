package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Profile mirrors the 'profiles' table: at most one row per account.
// Optional attributes are nullable in the schema and carried here as
// sql.Null* so an empty field is distinguishable from an absent row.
type Profile struct {
	ID           uint64
	AccountID    uint64
	ActCategory  sql.NullString
	Genre        sql.NullString
	Bio          sql.NullString
	Availability string
	Location     sql.NullString
	IsPerformer  bool
	ImagePath    sql.NullString
}

// ProfileDetail joins a profile with its account row for the profile and
// performer views.  HasProfile reports whether the profile row exists at
// all; a detail with HasProfile=false still carries the account identity.
type ProfileDetail struct {
	Profile
	Name       string
	Email      string
	IsManager  bool
	HasProfile bool
}

// ProfileUpdate enumerates the mutable profile fields.  Every allowed
// mutation is a named field here; handlers never pass free-form column maps.
type ProfileUpdate struct {
	ActCategory  sql.NullString
	Genre        sql.NullString
	Bio          sql.NullString
	Availability string
	Location     sql.NullString
	IsPerformer  bool
	// ImagePath is only written when Valid, so an edit without a new upload
	// keeps the existing image.
	ImagePath sql.NullString
}

type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileCols = "id,account_id,act_category,genre,bio,availability,location,is_performer,image_path"

func scanProfile(row *sql.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.AccountID, &p.ActCategory, &p.Genre, &p.Bio,
		&p.Availability, &p.Location, &p.IsPerformer, &p.ImagePath)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// FindByAccountID fetches the profile row for an account.
func (r *ProfileRepo) FindByAccountID(ctx context.Context, accountID uint64) (Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE account_id=? LIMIT 1", accountID))
}

// ExistsForAccount reports whether an account already has a profile row.
// Existence of the row, not of any field value, is what gates the
// add-vs-edit flows.
func (r *ProfileRepo) ExistsForAccount(ctx context.Context, accountID uint64) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM profiles WHERE account_id=? LIMIT 1", accountID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindDetail joins the account and profile rows for an account id.  The
// profile side of the join may be absent; HasProfile carries that fact.
func (r *ProfileRepo) FindDetail(ctx context.Context, accountID uint64) (ProfileDetail, error) {
	var d ProfileDetail
	var profileID sql.NullInt64
	var availability sql.NullString
	var isPerformer sql.NullBool
	err := r.DB.QueryRowContext(ctx, `
		SELECT a.id, a.name, a.email, a.is_manager,
		       p.id, p.act_category, p.genre, p.bio, p.availability,
		       p.location, p.is_performer, p.image_path
		FROM accounts a
		LEFT JOIN profiles p ON p.account_id = a.id
		WHERE a.id = ?
		LIMIT 1`, accountID).
		Scan(&d.AccountID, &d.Name, &d.Email, &d.IsManager,
			&profileID, &d.ActCategory, &d.Genre, &d.Bio, &availability,
			&d.Location, &isPerformer, &d.ImagePath)
	if err == sql.ErrNoRows {
		return ProfileDetail{}, ErrNotFound
	}
	if err != nil {
		return ProfileDetail{}, err
	}
	if profileID.Valid {
		d.HasProfile = true
		d.ID = uint64(profileID.Int64)
		d.Availability = availability.String
		d.IsPerformer = isPerformer.Bool
	} else {
		d.Availability = "N"
	}
	return d, nil
}

// Create inserts a profile row for an account.
func (r *ProfileRepo) Create(ctx context.Context, accountID uint64, u ProfileUpdate) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles
		(account_id, act_category, genre, bio, availability, location, is_performer, image_path)
		VALUES (?,?,?,?,?,?,?,?)`,
		accountID, u.ActCategory, u.Genre, u.Bio, u.Availability,
		u.Location, u.IsPerformer, u.ImagePath)
	return err
}

// Update applies a ProfileUpdate to the profile owned by accountID.  The
// image path is left untouched unless the update carries one.  Concurrent
// updates are last-write-wins; there is no conflict detection.
func (r *ProfileRepo) Update(ctx context.Context, accountID uint64, u ProfileUpdate) error {
	var res sql.Result
	var err error
	if u.ImagePath.Valid {
		res, err = r.DB.ExecContext(ctx, `
			UPDATE profiles
			SET act_category=?, genre=?, bio=?, availability=?, location=?, is_performer=?, image_path=?
			WHERE account_id=?`,
			u.ActCategory, u.Genre, u.Bio, u.Availability, u.Location, u.IsPerformer, u.ImagePath, accountID)
	} else {
		res, err = r.DB.ExecContext(ctx, `
			UPDATE profiles
			SET act_category=?, genre=?, bio=?, availability=?, location=?, is_performer=?
			WHERE account_id=?`,
			u.ActCategory, u.Genre, u.Bio, u.Availability, u.Location, u.IsPerformer, accountID)
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetImagePath persists a resolved or uploaded image path.  Used both by
// uploads and by the lazy default-avatar materialization; re-running it with
// the same value is harmless, which keeps the materialization race-safe.
func (r *ProfileRepo) SetImagePath(ctx context.Context, accountID uint64, path string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET image_path=? WHERE account_id=?", path, accountID)
	return err
}

// SetAvailability flips the two-state availability flag.
func (r *ProfileRepo) SetAvailability(ctx context.Context, accountID uint64, availability string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET availability=? WHERE account_id=?", availability, accountID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the profile row for an account.  Missing rows are not an
// error: self-service delete and the account cascade both treat an already
// absent profile as done.
func (r *ProfileRepo) Delete(ctx context.Context, accountID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM profiles WHERE account_id=?", accountID)
	return err
}

// DirectoryRow is one entry of the public performer directory.
type DirectoryRow struct {
	AccountID    uint64
	Name         string
	Email        string
	ActCategory  sql.NullString
	Genre        sql.NullString
	Bio          sql.NullString
	Availability string
	Location     sql.NullString
	ImagePath    sql.NullString
}

// SearchDirectory lists performer profiles, optionally filtered by a free
// text term matched case-insensitively against name, category, genre and
// location.  Results are ordered by lowercased account name.
func (r *ProfileRepo) SearchDirectory(ctx context.Context, term string) ([]DirectoryRow, error) {
	where := "p.is_performer = 1"
	args := []any{}

	term = strings.ToLower(strings.TrimSpace(term))
	if term != "" {
		where += ` AND (LOWER(a.name) LIKE ? OR LOWER(p.act_category) LIKE ?
			OR LOWER(p.genre) LIKE ? OR LOWER(p.location) LIKE ?)`
		like := "%" + term + "%"
		args = append(args, like, like, like, like)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.name, a.email, p.act_category, p.genre, p.bio,
		       p.availability, p.location, p.image_path
		FROM profiles p
		JOIN accounts a ON a.id = p.account_id
		WHERE `+where+`
		ORDER BY LOWER(a.name) ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DirectoryRow{}
	for rows.Next() {
		var d DirectoryRow
		if err := rows.Scan(&d.AccountID, &d.Name, &d.Email, &d.ActCategory,
			&d.Genre, &d.Bio, &d.Availability, &d.Location, &d.ImagePath); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
