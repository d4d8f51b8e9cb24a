package email

import (
	"context"
	"fmt"
	"html"
)

const standardFooter = "Thank you for using hellojane!"

// authMessage es la plantilla compartida por los correos de cuenta.
const authMessage = `<html><body style="font-family:sans-serif">
<h2>%s</h2>
<p>%s</p>
<p><a href="%s" style="display:inline-block;padding:10px 18px;background:#1a73e8;color:#fff;text-decoration:none;border-radius:4px">%s</a></p>
<p>%s</p>
</body></html>`

func renderAuthMessage(heading, body, buttonText, buttonURL string) string {
	return fmt.Sprintf(authMessage, html.EscapeString(heading), body,
		html.EscapeString(buttonURL), html.EscapeString(buttonText), standardFooter)
}

// SendEmailConfirmation manda el correo de confirmación de registro.
func SendEmailConfirmation(ctx context.Context, s Sender, to, link string) error {
	encoded := html.EscapeString(link)
	body := "A registration request has been received. To continue, " +
		"please confirm your email address by <a href='" + encoded + "'>clicking here</a>."
	return s.SendEmail(ctx, to, "Confirm your email",
		renderAuthMessage("Confirm your email", body, "Confirm your email", link))
}

// SendResetPassword manda el correo de reseteo de contraseña.
func SendResetPassword(ctx context.Context, s Sender, to, callbackURL string) error {
	encoded := html.EscapeString(callbackURL)
	body := "A request to reset your password has been received. " +
		"You can reset it by <a href='" + encoded + "'>clicking here</a>."
	return s.SendEmail(ctx, to, "Reset Your Password",
		renderAuthMessage("Reset Your Password", body, "Reset Your Password", callbackURL))
}
