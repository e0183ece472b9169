package utils

import (
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer delivers password reset codes.
type Mailer interface {
	SendResetCode(email, code string) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// SMTPMailer sends mail through gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer returns an SMTP mailer, or a logging mailer when no host is configured.
func NewMailer(cfg SMTPConfig, log zerolog.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.User,
	}
}

func (m *SMTPMailer) SendResetCode(email, code string) error {
	return m.dialer.DialAndSend(ResetCodeMessage(m.from, email, code))
}

// ResetCodeMessage builds the bilingual reset mail.
func ResetCodeMessage(from, to, code string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "رمز إعادة تعيين كلمة المرور / Password Reset Code")
	msg.SetBody("text/plain", "رمز إعادة التعيين: "+code+"\nYour password reset code is: "+code)

	htmlBody := `
	<!DOCTYPE html>
	<html dir="rtl">
	<head>
		<title>Password Reset Code</title>
		<style>
			body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
			.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
			.code { font-weight: bold; color: #007bff; font-size: 24px; }
		</style>
	</head>
	<body>
		<div class="container">
			<h1>رمز إعادة تعيين كلمة المرور</h1>
			<p class="code">` + code + `</p>
			<p>الرمز صالح لمدة 15 دقيقة. إذا لم تطلب ذلك يرجى تجاهل هذه الرسالة.</p>
			<p dir="ltr">The code is valid for 15 minutes. If you did not request a password reset, please ignore this email.</p>
		</div>
	</body>
	</html>
	`
	msg.AddAlternative("text/html", htmlBody)
	return msg
}

// LogMailer writes reset codes to the log, used when SMTP is not configured.
type LogMailer struct {
	log zerolog.Logger
}

func (m *LogMailer) SendResetCode(email, code string) error {
	m.log.Info().Str("email", email).Str("code", code).Msg("reset code (smtp disabled)")
	return nil
}
