package utils

import (
	"fmt"
	"time"
)

func SendSettlementReceivedEmail(to, payerName, amount, currency, tripTitle, expenseTitle string, date time.Time) error {
	subject := fmt.Sprintf("💸 %s settled their share of '%s'", payerName, expenseTitle)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Share Settled</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333; }
		.container { max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; box-shadow: 0 4px 16px rgba(0,0,0,0.08); overflow: hidden; border-top: 5px solid #0a4d3c; }
		.header { background-color: #0a4d3c; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 24px 28px; font-size: 15px; line-height: 1.8; }
		.amount { font-size: 26px; font-weight: 700; color: #0a4d3c; text-align: center; margin: 18px 0; }
		.footer { text-align: center; font-size: 12px; color: #999; padding: 14px; }
	</style>
	</head>
	<body>
	<div class="container">
		<div class="header"><h2>Share Settled</h2></div>
		<div class="content">
			<p><strong>%s</strong> marked their share of <strong>%s</strong>
			(trip: %s) as settled on %s.</p>
			<div class="amount">%s %s</div>
		</div>
		<div class="footer">Sent by TripTally — shared travel expenses, settled.</div>
	</div>
	</body>
	</html>`, payerName, expenseTitle, tripTitle, date.Format("Jan 2, 2006"), currency, amount)

	return SendEmail(to, subject, body)
}
