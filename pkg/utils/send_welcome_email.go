package utils

import "fmt"

func SendWelcomeEmail(to, firstName string) error {
	subject := fmt.Sprintf("Welcome to TripTally, %s!", firstName)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Welcome to TripTally</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333; }
		.container { max-width: 520px; margin: 25px auto; background: #ffffff; border-radius: 12px; box-shadow: 0 4px 16px rgba(0,0,0,0.08); overflow: hidden; border-top: 5px solid #1c6dd0; }
		.header { background-color: #1c6dd0; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 24px 28px; font-size: 15px; line-height: 1.8; }
		.footer { text-align: center; font-size: 12px; color: #999; padding: 14px; }
	</style>
	</head>
	<body>
	<div class="container">
		<div class="header"><h2>Welcome aboard ✈️</h2></div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your TripTally account is ready. Create a trip, invite your travel
			companions, and log shared expenses — we keep track of who owes whom
			so you don't have to.</p>
			<p>Safe travels,<br>The TripTally team</p>
		</div>
		<div class="footer">You received this email because an account was created with this address.</div>
	</div>
	</body>
	</html>`, firstName)

	return SendEmail(to, subject, body)
}
