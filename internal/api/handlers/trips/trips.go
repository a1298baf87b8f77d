package trips

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"triptally/internal/models"
	"triptally/internal/repositories/sqlconnect"
	"triptally/pkg/utils"

	"github.com/shopspring/decimal"
)

// Query parameters the trip list accepts as filters, mapped to trips columns.
var tripFilters = map[string]string{
	"destination": "t.destination",
	"currency":    "t.budget_currency",
}

// FUNC TO CREATE A TRIP
func CreateTripHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	var newTrip models.Trip
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&newTrip); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	newTrip.Title = strings.TrimSpace(newTrip.Title)
	if newTrip.Title == "" {
		utils.WriteError(w, "trip title is required", http.StatusBadRequest)
		return
	}

	if len(newTrip.Title) > 100 || len(newTrip.Description) > 500 {
		utils.WriteError(w, "title or description too long", http.StatusBadRequest)
		return
	}

	if newTrip.BudgetCurrency == "" {
		newTrip.BudgetCurrency = "USD"
	}
	if !models.ValidCurrency(newTrip.BudgetCurrency) {
		utils.WriteError(w, "unsupported currency", http.StatusBadRequest)
		return
	}

	if newTrip.BudgetTotal.IsNegative() {
		utils.WriteError(w, "budget cannot be negative", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO trips (title, description, destination, start_date, end_date, budget_total, budget_currency, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.ExecContext(ctx, query,
		newTrip.Title, newTrip.Description, newTrip.Destination,
		newTrip.StartDate, newTrip.EndDate,
		newTrip.BudgetTotal, newTrip.BudgetCurrency, userID,
	)
	if err != nil {
		utils.Logger.Errorf("failed to create trip: %v", err)
		utils.WriteError(w, "failed to create trip, try again later!", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		utils.Logger.Errorf("failed to get last inserted ID: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Trip created successfully",
		"data": map[string]interface{}{
			"trip_id":  id,
			"title":    newTrip.Title,
			"currency": newTrip.BudgetCurrency,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET ALL TRIPS THE LOGGED-IN USER OWNS OR COLLABORATES ON
func GetMyTripsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	query := `
		SELECT DISTINCT t.id, t.title, COALESCE(t.description, ''), COALESCE(t.destination, ''), t.start_date, t.end_date,
			t.budget_total, t.budget_currency, t.owner_id, t.created_at
		FROM trips t
		LEFT JOIN trip_collaborators tc ON tc.trip_id = t.id AND tc.status = 'accepted'
		WHERE t.is_deleted = FALSE AND (t.owner_id = ? OR tc.user_id = ?)
	`
	args := []interface{}{userID, userID}

	query, args = utils.AddFilters(r, query, args, tripFilters)
	query = utils.AddSorting(r, query)

	rows, err := db.Query(query, args...)
	if err != nil {
		utils.Logger.Errorf("internal server error: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	tripList := make([]models.Trip, 0)
	for rows.Next() {
		var trip models.Trip
		err := rows.Scan(&trip.ID, &trip.Title, &trip.Description, &trip.Destination,
			&trip.StartDate, &trip.EndDate, &trip.BudgetTotal, &trip.BudgetCurrency,
			&trip.OwnerID, &trip.CreatedAt)
		if err != nil {
			utils.Logger.Errorf("error fetching data: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		tripList = append(tripList, trip)
	}

	response := struct {
		Status string        `json:"status"`
		Count  int           `json:"count"`
		Data   []models.Trip `json:"data"`
	}{
		Status: "success",
		Count:  len(tripList),
		Data:   tripList,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET A SINGLE TRIP AND ITS COLLABORATORS
func GetTripByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)
	role, _ := r.Context().Value(utils.ContextKey("role")).(string)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	allowed, err := CanAccess(ctx, db, tripID, userID, role)
	if err == ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.Logger.Errorf("error checking access: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !allowed {
		utils.WriteError(w, "forbidden: you are not a collaborator on this trip", http.StatusForbidden)
		return
	}

	var trip models.Trip
	err = db.QueryRowContext(ctx, `
        SELECT id, title, COALESCE(description, ''), COALESCE(destination, ''), start_date, end_date,
			budget_total, budget_currency, owner_id, created_at, updated_at
        FROM trips WHERE id = ? AND is_deleted = FALSE
    `, tripID).Scan(
		&trip.ID, &trip.Title, &trip.Description, &trip.Destination,
		&trip.StartDate, &trip.EndDate, &trip.BudgetTotal, &trip.BudgetCurrency,
		&trip.OwnerID, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "trip not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching trip: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type CollaboratorDetails struct {
		ID        int    `json:"id"`
		TripID    int    `json:"trip_id"`
		UserID    int    `json:"user_id"`
		Role      string `json:"role"`
		Status    string `json:"status"`
		InvitedAt string `json:"invited_at"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Username  string `json:"username"`
		Email     string `json:"email"`
	}

	rows, err := db.QueryContext(ctx, `
        SELECT tc.id, tc.trip_id, tc.user_id, tc.role, tc.status, tc.invited_at,
			u.first_name, u.last_name, u.username, u.email
        FROM trip_collaborators tc
        JOIN users u ON u.id = tc.user_id
        WHERE tc.trip_id = ?
    `, tripID)
	if err != nil {
		utils.Logger.Errorf("error fetching collaborators: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	collaborators := make([]CollaboratorDetails, 0)
	for rows.Next() {
		var c CollaboratorDetails
		var invitedAt sql.NullString
		err := rows.Scan(&c.ID, &c.TripID, &c.UserID, &c.Role, &c.Status, &invitedAt,
			&c.FirstName, &c.LastName, &c.Username, &c.Email)
		if err != nil {
			utils.Logger.Errorf("error scanning collaborator: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if invitedAt.Valid {
			c.InvitedAt = invitedAt.String
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("error iterating collaborators: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status        string                `json:"status"`
		Trip          models.Trip           `json:"trip"`
		Collaborators []CollaboratorDetails `json:"collaborators"`
	}{
		Status:        "success",
		Trip:          trip,
		Collaborators: collaborators,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// FUNC TO UPDATE TRIP DETAILS BY OWNER
func UpdateTripHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		Title          string           `json:"title"`
		Description    string           `json:"description"`
		Destination    string           `json:"destination"`
		StartDate      string           `json:"start_date"`
		EndDate        string           `json:"end_date"`
		BudgetTotal    *decimal.Decimal `json:"budget_total"`
		BudgetCurrency string           `json:"budget_currency"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Title != "" && strings.TrimSpace(req.Title) == "" {
		utils.WriteError(w, "title cannot be empty or whitespace", http.StatusBadRequest)
		return
	}

	if len(req.Title) > 100 || len(req.Description) > 500 {
		utils.WriteError(w, "title or description too long", http.StatusBadRequest)
		return
	}

	if req.BudgetCurrency != "" && !models.ValidCurrency(req.BudgetCurrency) {
		utils.WriteError(w, "unsupported currency", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ownerID, _, _, err := FetchTrip(ctx, db, tripID)
	if err == ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if ownerID != userID {
		utils.WriteError(w, "forbidden: not trip owner", http.StatusForbidden)
		return
	}

	// Build dynamic update query
	fields := []string{}
	args := []interface{}{}

	if req.Title != "" {
		fields = append(fields, "title = ?")
		args = append(args, req.Title)
	}
	if req.Description != "" {
		fields = append(fields, "description = ?")
		args = append(args, req.Description)
	}
	if req.Destination != "" {
		fields = append(fields, "destination = ?")
		args = append(args, req.Destination)
	}
	if req.StartDate != "" {
		fields = append(fields, "start_date = ?")
		args = append(args, req.StartDate)
	}
	if req.EndDate != "" {
		fields = append(fields, "end_date = ?")
		args = append(args, req.EndDate)
	}
	if req.BudgetTotal != nil {
		if req.BudgetTotal.IsNegative() {
			utils.WriteError(w, "budget cannot be negative", http.StatusBadRequest)
			return
		}
		fields = append(fields, "budget_total = ?")
		args = append(args, *req.BudgetTotal)
	}
	if req.BudgetCurrency != "" {
		fields = append(fields, "budget_currency = ?")
		args = append(args, req.BudgetCurrency)
	}

	if len(fields) == 0 {
		utils.WriteError(w, "no updates provided", http.StatusBadRequest)
		return
	}

	args = append(args, tripID)

	query := fmt.Sprintf("UPDATE trips SET %s WHERE id = ?", strings.Join(fields, ", "))
	_, err = db.ExecContext(ctx, query, args...)
	if err != nil {
		utils.WriteError(w, "failed to update trip", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "Trip updated successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO SOFT DELETE A TRIP BY OWNER
func DeleteTripHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ownerID, _, _, err := FetchTrip(ctx, db, tripID)
	if err == ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if ownerID != userID {
		utils.WriteError(w, "forbidden: not trip owner", http.StatusForbidden)
		return
	}

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	res, err := db.ExecContext(ctx,
		"UPDATE trips SET is_deleted = TRUE, deleted_at = ? WHERE id = ? AND is_deleted = FALSE",
		now, tripID)
	if err != nil {
		utils.Logger.Errorf("error deleting trip: %v", err)
		utils.WriteError(w, "error deleting trip", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		utils.WriteError(w, "trip not found or already deleted", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := map[string]interface{}{
		"status":  "success",
		"message": "trip deleted successfully",
	}

	json.NewEncoder(w).Encode(response)
}

// FUNC TO INVITE COLLABORATORS TO A TRIP
func InviteCollaboratorsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type InviteRequest struct {
		Email string `json:"email"`
	}

	var invites []InviteRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err = json.Unmarshal(body, &invites); err != nil {
		utils.WriteError(w, "invalid JSON array", http.StatusBadRequest)
		return
	}

	if len(invites) == 0 {
		utils.WriteError(w, "no invites provided", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	var ownerID int
	var tripTitle, destination string
	err = tx.QueryRowContext(ctx,
		"SELECT owner_id, title, COALESCE(destination, '') FROM trips WHERE id = ? AND is_deleted = FALSE",
		tripID).Scan(&ownerID, &tripTitle, &destination)
	if err != nil {
		tx.Rollback()
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}

	if ownerID != userID {
		tx.Rollback()
		utils.WriteError(w, "forbidden: not trip owner", http.StatusForbidden)
		return
	}

	durationDays, err := strconv.Atoi(os.Getenv("INVITE_TOKEN_EXP_DURATION"))
	if err != nil {
		tx.Rollback()
		utils.ErrorHandler(err, "invalid invite token duration")
		return
	}

	expiryTime := time.Now().Add(time.Hour * 24 * time.Duration(durationDays))
	expiry := expiryTime.UTC().Format("2006-01-02 15:04:05")

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trip_collaborators (trip_id, user_id, role, status, token_code, expires_at)
		VALUES (?, ?, 'editor', 'pending', ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		utils.ErrorHandler(err, "failed to prepare insert statement")
		return
	}
	defer stmt.Close()

	addedInvites := 0
	skippedInvites := 0
	var successfulInvites []string
	var skippedDetails []map[string]string

	for _, inv := range invites {
		email := strings.TrimSpace(inv.Email)
		if email == "" {
			skippedInvites++
			skippedDetails = append(skippedDetails, map[string]string{
				"email":  email,
				"reason": "email is empty or invalid",
			})
			continue
		}

		var inviteeID int
		err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", email).Scan(&inviteeID)
		if err == sql.ErrNoRows {
			skippedInvites++
			skippedDetails = append(skippedDetails, map[string]string{
				"email":  email,
				"reason": "no account with this email, ask them to sign up first",
			})
			continue
		}
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to look up user %s: %v", email, err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if inviteeID == userID {
			skippedInvites++
			skippedDetails = append(skippedDetails, map[string]string{
				"email":  email,
				"reason": "you are the trip owner",
			})
			continue
		}

		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM trip_collaborators
				WHERE trip_id = ? AND user_id = ? AND status IN ('pending', 'accepted')
			)
		`, tripID, inviteeID).Scan(&exists)
		if err == nil && exists {
			skippedInvites++
			skippedDetails = append(skippedDetails, map[string]string{
				"email":  email,
				"reason": "user already invited or already a collaborator",
			})
			continue
		}

		tokenBytes := make([]byte, 32)
		_, err := rand.Read(tokenBytes)
		if err != nil {
			tx.Rollback()
			utils.ErrorHandler(err, "failed to generate token")
			return
		}

		token := hex.EncodeToString(tokenBytes)
		hashedToken := sha256.Sum256(tokenBytes)
		hashedTokenString := hex.EncodeToString(hashedToken[:])

		// A declined or expired row for the same user blocks the unique key,
		// clear it before re-inviting.
		_, err = tx.ExecContext(ctx,
			"DELETE FROM trip_collaborators WHERE trip_id = ? AND user_id = ? AND status NOT IN ('pending', 'accepted')",
			tripID, inviteeID)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to clear stale invite for %s: %v", email, err)
			return
		}

		_, err = stmt.ExecContext(ctx, tripID, inviteeID, hashedTokenString, expiry)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to insert invitation for %s: %v", email, err)
			return
		}

		addedInvites++
		successfulInvites = append(successfulInvites, email)

		inviteLink := fmt.Sprintf("https://localhost:3000/trips/member/accept/%s/invite", token)
		go func(email string, link string) {
			time.AfterFunc(500*time.Millisecond, func() {
				if err := utils.SendTripInviteEmail(email, tripTitle, destination, link, expiryTime); err != nil {
					utils.Logger.Errorf("failed to send invite email to %s: %v", email, err)
				}
			})
		}(email, inviteLink)
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "failed to save invites", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"status":            "success",
		"added_invites":     addedInvites,
		"skipped_invites":   skippedInvites,
		"successful_emails": successfulInvites,
		"skipped_details":   skippedDetails,
		"message":           fmt.Sprintf("%d invites sent, %d skipped", addedInvites, skippedInvites),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// FUNC TO ACCEPT TRIP INVITATION
func AcceptInvitationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	token := r.PathValue("tokenCode")

	bytes, err := hex.DecodeString(token)
	if err != nil {
		utils.WriteError(w, "invalid invite token", http.StatusBadRequest)
		return
	}

	hashedToken := sha256.Sum256(bytes)
	hashedTokenString := hex.EncodeToString(hashedToken[:])

	var invite models.TripCollaborator
	query := `
		SELECT id, trip_id, user_id, status FROM trip_collaborators
		WHERE token_code = ? AND expires_at > ?
	`
	err = db.QueryRow(query, hashedTokenString, time.Now().UTC().Format("2006-01-02 15:04:05")).
		Scan(&invite.ID, &invite.TripID, &invite.UserID, &invite.Status)
	if err != nil {
		utils.WriteError(w, "invite token expired or invalid", http.StatusBadRequest)
		return
	}

	if invite.UserID != userID {
		utils.WriteError(w, "this invitation was sent to a different account", http.StatusForbidden)
		return
	}

	if invite.Status == models.CollaboratorAccepted {
		utils.WriteError(w, "invitation already accepted", http.StatusBadRequest)
		return
	}

	if invite.Status != models.CollaboratorPending {
		utils.WriteError(w, "invitation no longer valid", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	_, err = db.Exec(`
		UPDATE trip_collaborators
		SET status = 'accepted', responded_at = ?, token_code = NULL
		WHERE id = ?
	`, now, invite.ID)
	if err != nil {
		utils.Logger.Errorf("failed to accept invitation: %v", err)
		utils.WriteError(w, "unable to join trip at the moment, please try again later!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "invite accepted successfully",
		"data": map[string]interface{}{
			"trip_id": invite.TripID,
		},
	})
}

// FUNC TO REMOVE A COLLABORATOR BY TRIP OWNER
func RemoveCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		ID int `json:"id"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ownerID, _, _, err := FetchTrip(ctx, db, tripID)
	if err == ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if ownerID != userID {
		utils.WriteError(w, "forbidden: not trip owner", http.StatusForbidden)
		return
	}

	if req.ID == userID {
		utils.WriteError(w, "trip owners cannot be removed. Delete the trip instead.", http.StatusBadRequest)
		return
	}

	var collaboratorID int
	err = db.QueryRowContext(ctx,
		"SELECT id FROM trip_collaborators WHERE trip_id = ? AND user_id = ?",
		tripID, req.ID).Scan(&collaboratorID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user is not a collaborator on this trip", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = db.ExecContext(ctx,
		"DELETE FROM trip_collaborators WHERE trip_id = ? AND user_id = ?",
		tripID, req.ID)
	if err != nil {
		utils.Logger.Errorf("failed to remove collaborator: %v", err)
		utils.WriteError(w, "failed to remove collaborator", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "collaborator removed successfully",
	})
}

// FUNC FOR A COLLABORATOR TO LEAVE A TRIP
func LeaveTripHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	tripID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid trip ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ownerID, _, _, err := FetchTrip(ctx, db, tripID)
	if err == ErrTripNotFound {
		utils.WriteError(w, "trip not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if ownerID == userID {
		utils.WriteError(w, "trip owners cannot leave. Delete the trip instead.", http.StatusBadRequest)
		return
	}

	var collaboratorID int
	err = db.QueryRowContext(ctx,
		"SELECT id FROM trip_collaborators WHERE trip_id = ? AND user_id = ?",
		tripID, userID).Scan(&collaboratorID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a collaborator on this trip", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	_, err = db.ExecContext(ctx,
		"DELETE FROM trip_collaborators WHERE trip_id = ? AND user_id = ?",
		tripID, userID)
	if err != nil {
		utils.Logger.Errorf("failed to leave trip: %v", err)
		utils.WriteError(w, "failed to leave trip", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "you have successfully left the trip",
	})
}
