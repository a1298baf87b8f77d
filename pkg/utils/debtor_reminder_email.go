package utils

import (
	"fmt"
	"time"
)

func SendDebtorReminderEmail(to, firstName, amount, currency, tripTitle, expenseTitle string, expenseDate time.Time) error {
	subject := fmt.Sprintf("💰 Reminder: you still owe %s %s for '%s'", currency, amount, expenseTitle)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Payment Reminder</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333; }
		.container { max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; box-shadow: 0 4px 16px rgba(0,0,0,0.08); overflow: hidden; border-top: 5px solid #d9534f; }
		.header { background-color: #d9534f; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 24px 28px; font-size: 15px; line-height: 1.8; }
		.amount { font-size: 26px; font-weight: 700; color: #d9534f; text-align: center; margin: 18px 0; }
		.footer { text-align: center; font-size: 12px; color: #999; padding: 14px; }
	</style>
	</head>
	<body>
	<div class="container">
		<div class="header"><h2>Payment Reminder</h2></div>
		<div class="content">
			<p>Hi %s,</p>
			<p>A friendly reminder that your share of <strong>%s</strong>
			(trip: %s, added %s) is still unsettled:</p>
			<div class="amount">%s %s</div>
			<p>Open TripTally to mark it settled once you've paid up.</p>
		</div>
		<div class="footer">Sent by TripTally — shared travel expenses, settled.</div>
	</div>
	</body>
	</html>`, firstName, expenseTitle, tripTitle, expenseDate.Format("Jan 2, 2006"), currency, amount)

	return SendEmail(to, subject, body)
}
