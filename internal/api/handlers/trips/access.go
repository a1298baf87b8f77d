package trips

import (
	"context"
	"database/sql"
	"errors"
)

var ErrTripNotFound = errors.New("trip not found")

// FetchTrip loads a live (non-deleted) trip's access fields.
func FetchTrip(ctx context.Context, db *sql.DB, tripID int) (ownerID int, currency string, title string, err error) {
	err = db.QueryRowContext(ctx,
		"SELECT owner_id, budget_currency, title FROM trips WHERE id = ? AND is_deleted = FALSE",
		tripID,
	).Scan(&ownerID, &currency, &title)
	if err == sql.ErrNoRows {
		return 0, "", "", ErrTripNotFound
	}
	return ownerID, currency, title, err
}

// CanAccess reports whether the user may read a trip and its expenses:
// the trip owner, an accepted collaborator, or an admin.
func CanAccess(ctx context.Context, db *sql.DB, tripID, userID int, role string) (bool, error) {
	if role == "admin" {
		return true, nil
	}

	var ownerID int
	err := db.QueryRowContext(ctx,
		"SELECT owner_id FROM trips WHERE id = ? AND is_deleted = FALSE",
		tripID,
	).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return false, ErrTripNotFound
	}
	if err != nil {
		return false, err
	}
	if ownerID == userID {
		return true, nil
	}

	var accepted bool
	err = db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM trip_collaborators WHERE trip_id = ? AND user_id = ? AND status = 'accepted')",
		tripID, userID,
	).Scan(&accepted)
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// CanEditExpense reports whether the user may mutate an expense: its creator,
// the trip owner, or an admin.
func CanEditExpense(ctx context.Context, db *sql.DB, tripID, createdBy, userID int, role string) (bool, error) {
	if role == "admin" || createdBy == userID {
		return true, nil
	}

	var ownerID int
	err := db.QueryRowContext(ctx,
		"SELECT owner_id FROM trips WHERE id = ? AND is_deleted = FALSE",
		tripID,
	).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return false, ErrTripNotFound
	}
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}
