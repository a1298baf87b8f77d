package utils

import (
	"fmt"
	"time"
)

func SendTripInviteEmail(to, tripTitle, destination, inviteURL string, expiresAt time.Time) error {
	subject := fmt.Sprintf("🧳 You've been invited to plan '%s'", tripTitle)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Trip Invitation</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333; }
		.container { max-width: 520px; margin: 25px auto; background: #ffffff; border-radius: 12px; box-shadow: 0 4px 16px rgba(0,0,0,0.08); overflow: hidden; border-top: 5px solid #1c6dd0; }
		.header { background-color: #1c6dd0; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 24px 28px; font-size: 15px; line-height: 1.8; }
		.cta { text-align: center; margin: 25px 0; }
		.cta a { background-color: #1c6dd0; color: #ffffff; text-decoration: none; padding: 12px 30px; border-radius: 8px; font-weight: 600; }
		.footer { text-align: center; font-size: 12px; color: #999; padding: 14px; }
	</style>
	</head>
	<body>
	<div class="container">
		<div class="header"><h2>Trip Invitation</h2></div>
		<div class="content">
			<p>You've been invited to collaborate on <strong>%s</strong> (%s) on TripTally.</p>
			<p>As a collaborator you can add shared expenses, split costs, and see
			who owes whom at the end of the trip.</p>
			<div class="cta"><a href="%s">Accept Invitation</a></div>
			<p>This invitation expires on <strong>%s</strong>.</p>
		</div>
		<div class="footer">If you weren't expecting this invitation you can ignore this email.</div>
	</div>
	</body>
	</html>`, tripTitle, destination, inviteURL, expiresAt.Format("Jan 2, 2006 15:04 MST"))

	return SendEmail(to, subject, body)
}
