package cron

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
	"triptally/pkg/utils"

	"github.com/robfig/cron/v3"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs every 6 hours — check expired trip invitations
	_, err := c.AddFunc("0 */6 * * *", func() {
		err := CheckAndUpdateExpiredInvitations(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to update expired invitations: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule invitation expiration job: %v", err)
	}

	// Runs daily at midnight — send reminders
	_, err = c.AddFunc("0 0 * * *", func() {
		err := SendReminderEmailsToDebtors(db)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to send reminder emails: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule debtor reminder job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (invitation expiry every 6h, debtor reminders daily at midnight)")
	return c
}

// -------------------------------------------------------------
// Check and update expired trip invitations
// -------------------------------------------------------------
func CheckAndUpdateExpiredInvitations(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE trip_collaborators
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at < ?
	`, time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		tx.Rollback()
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if rowsAffected > 0 {
		utils.Logger.Infof("Updated %d expired invitations to status 'expired'", rowsAffected)
	}
	return nil
}

// -------------------------------------------------------------
// Send daily reminders to debtors (email sends run concurrently)
// -------------------------------------------------------------
func SendReminderEmailsToDebtors(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT
			s.user_id,
			u.email,
			u.first_name,
			t.title AS trip_title,
			e.title AS expense_title,
			e.currency,
			e.date,
			SUM(s.amount) AS total_owed
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		JOIN trips t ON e.trip_id = t.id
		JOIN users u ON s.user_id = u.id
		WHERE s.settled = FALSE
			AND s.user_id != e.paid_by
			AND e.is_deleted = FALSE
			AND t.is_deleted = FALSE
		GROUP BY s.user_id, e.id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type reminder struct {
		email, firstName, tripTitle, expenseTitle, currency string
		totalOwed                                           float64
		expenseDate                                         time.Time
	}

	var reminders []reminder
	for rows.Next() {
		var (
			rem            reminder
			expenseDateRaw sql.NullString
		)

		if err := rows.Scan(
			new(int),
			&rem.email,
			&rem.firstName,
			&rem.tripTitle,
			&rem.expenseTitle,
			&rem.currency,
			&expenseDateRaw,
			&rem.totalOwed,
		); err != nil {
			utils.Logger.Errorf("Failed to scan debtor row: %v", err)
			continue
		}

		if expenseDateRaw.Valid {
			rem.expenseDate, err = time.Parse("2006-01-02 15:04:05", expenseDateRaw.String)
			if err != nil {
				utils.Logger.Errorf("Failed to parse date for %s: %v", rem.email, err)
				continue
			}
		} else {
			rem.expenseDate = time.Now()
		}

		reminders = append(reminders, rem)
	}

	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("Error iterating debtor rows: %v", err)
		return err
	}

	var wg sync.WaitGroup
	// Sized to the fanout so a failed send never blocks on a full channel.
	errChan := make(chan error, len(reminders))

	for _, rem := range reminders {
		wg.Add(1)
		go func(rem reminder) {
			defer wg.Done()

			totalOwedStr := fmt.Sprintf("%.2f", rem.totalOwed)

			if err := utils.SendDebtorReminderEmail(
				rem.email,
				rem.firstName,
				totalOwedStr,
				rem.currency,
				rem.tripTitle,
				rem.expenseTitle,
				rem.expenseDate,
			); err != nil {
				errChan <- fmt.Errorf("failed to send reminder email to %s: %v", rem.email, err)
				return
			}

			utils.Logger.Infof("📧 Sent reminder to %s (%s) — %s %.2f for '%s' in '%s'",
				rem.firstName, rem.email, rem.currency, rem.totalOwed, rem.expenseTitle, rem.tripTitle)
		}(rem)
	}

	wg.Wait()
	close(errChan)

	for e := range errChan {
		utils.Logger.Error(e)
	}

	utils.Logger.Info("✅ Finished sending all debtor reminder emails.")
	return nil
}
