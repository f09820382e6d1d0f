package mailer

import "fmt"

func verificationTemplate(username, verifyURL string) (string, string) {
    subject := "Verify Your Email Address - Poker Signup"
    body := fmt.Sprintf(`Hi %s!

Thank you for registering with Poker Signup. To complete your registration and start playing, please verify your email address by visiting this link:

%s

IMPORTANT: This verification link will expire in 15 minutes for security reasons. If it expires, you can request a new verification email from the login page.

If you didn't create an account with Poker Signup, you can safely ignore this email.

Best regards,
The Poker Signup Team`, username, verifyURL)
    return subject, body
}

func passwordResetTemplate(username, resetURL string) (string, string) {
    subject := "Reset Your Password - Poker Signup"
    body := fmt.Sprintf(`Hi %s,

We received a request to reset the password for your Poker Signup account. You can choose a new password by visiting this link:

%s

This link expires in 1 hour and can only be used once.

If you didn't request a password reset, you can safely ignore this email. Your password won't be changed.

Best regards,
The Poker Signup Team`, username, resetURL)
    return subject, body
}

func welcomeTemplate(username, appURL string) (string, string) {
    subject := "Welcome to Poker Signup!"
    body := fmt.Sprintf(`Hi %s,

Your email is verified and your account is active. Browse the upcoming games and grab a seat:

%s

Good luck at the tables!

Best regards,
The Poker Signup Team`, username, appURL)
    return subject, body
}
