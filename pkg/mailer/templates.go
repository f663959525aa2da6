package mailer

import (
	"fmt"
	"html"
	"time"
)

// CodePurpose selects the wording of a verification code email.
type CodePurpose string

const (
	CodeRegistration  CodePurpose = "registration"
	CodePasswordReset CodePurpose = "password-reset"
)

// Moscow has no DST, a fixed zone avoids depending on tzdata.
var moscow = time.FixedZone("MSK", 3*60*60)

// Templates renders the portal's transactional emails.
type Templates struct {
	AppName   string
	PublicURL string
	CodeTTL   time.Duration
}

func (t Templates) subject(title string) string {
	return fmt.Sprintf("%s - %s", title, t.AppName)
}

func (t Templates) layout(color, title, body string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: %s;">%s</h2>
      <p>Здравствуйте!</p>
      %s
      <hr style="margin: 30px 0; border: none; border-top: 1px solid #e5e7eb;">
      <p style="color: #9ca3af; font-size: 12px;">
        %s
      </p>
    </div>
  `, color, title, body, html.EscapeString(t.AppName))
}

func (t Templates) codeBlock(code string) string {
	return fmt.Sprintf(`
      <div style="background-color: #f3f4f6; padding: 30px; border-radius: 8px; margin: 30px 0; text-align: center;">
        <p style="margin: 0 0 10px 0; color: #6b7280; font-size: 14px;">Ваш код подтверждения:</p>
        <div style="font-size: 36px; font-weight: bold; color: #0066CC; letter-spacing: 8px; font-family: monospace;">
          %s
        </div>
      </div>
      <p style="color: #6b7280; font-size: 14px;">
        Код действителен в течение %d минут.
      </p>`, html.EscapeString(code), t.ttlMinutes())
}

func (t Templates) ttlMinutes() int {
	if t.CodeTTL <= 0 {
		return 15
	}
	return int(t.CodeTTL / time.Minute)
}

// VerificationCode is sent on signup and on forgot-password.
func (t Templates) VerificationCode(to, code string, purpose CodePurpose) Message {
	title := "Подтверждение регистрации"
	description := "Спасибо за регистрацию! Введите код ниже для подтверждения вашего email."
	if purpose == CodePasswordReset {
		title = "Сброс пароля"
		description = "Вы запросили сброс пароля. Введите код ниже для продолжения."
	}

	body := fmt.Sprintf(`<p>%s</p>%s
      <p style="color: #6b7280; font-size: 14px;">
        Если вы не запрашивали этот код, просто проигнорируйте это письмо.
      </p>`, description, t.codeBlock(code))

	return Message{
		To:      to,
		Subject: t.subject(title),
		HTML:    t.layout("#0066CC", title, body),
	}
}

func (t Templates) PasswordChangeConfirmation(to, code string) Message {
	title := "Подтверждение смены пароля"
	body := fmt.Sprintf(`<p>Вы запросили смену пароля. Введите код ниже для подтверждения:</p>%s
      <p style="color: #dc2626; font-size: 14px; font-weight: bold;">
        Если вы не запрашивали смену пароля, немедленно свяжитесь с нами!
      </p>`, t.codeBlock(code))

	return Message{
		To:      to,
		Subject: t.subject(title),
		HTML:    t.layout("#0066CC", title, body),
	}
}

func (t Templates) PasswordChanged(to string, at time.Time) Message {
	title := "Пароль успешно изменен"
	body := fmt.Sprintf(`<p>Ваш пароль был успешно изменен.</p>
      <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p style="margin: 0; color: #374151;">
          <strong>Дата и время:</strong> %s
        </p>
      </div>
      <p style="color: #dc2626; font-size: 14px;">
        Если вы не меняли пароль, немедленно свяжитесь с нами или воспользуйтесь функцией восстановления пароля.
      </p>`, at.In(moscow).Format("02.01.2006, 15:04:05"))

	return Message{
		To:      to,
		Subject: t.subject(title),
		HTML:    t.layout("#0066CC", title, body),
	}
}

// EmailChangeCode goes to the current address and names the requested one.
func (t Templates) EmailChangeCode(to, newEmail, code string) Message {
	title := "Подтверждение смены email"
	body := fmt.Sprintf(`<p>Вы запросили смену email на: <strong>%s</strong></p>
      <p>Введите код ниже для подтверждения:</p>%s
      <p style="color: #dc2626; font-size: 14px;">
        Если вы не запрашивали смену email, проигнорируйте это письмо.
      </p>`, html.EscapeString(newEmail), t.codeBlock(code))

	return Message{
		To:      to,
		Subject: t.subject(title),
		HTML:    t.layout("#0066CC", title, body),
	}
}

func (t Templates) NGOApproved(to, ngoName string) Message {
	title := "Ваша организация одобрена!"
	body := fmt.Sprintf(`<p>Рады сообщить, что организация "%s" прошла модерацию и теперь доступна на портале.</p>
      <p>Теперь вы можете:</p>
      <ul>
        <li>Создавать мероприятия</li>
        <li>Управлять профилем организации</li>
        <li>Добавлять проекты</li>
        <li>Взаимодействовать с волонтерами</li>
      </ul>
      <a href="%s/dashboard" style="display: inline-block; background-color: #0284c7; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;">
        Перейти в личный кабинет
      </a>`, html.EscapeString(ngoName), html.EscapeString(t.PublicURL))

	return Message{
		To:      to,
		Subject: t.subject(title),
		HTML:    t.layout("#0284c7", title, body),
	}
}

// SupportReply notifies a ticket owner that staff answered.
func (t Templates) SupportReply(to, subject string, ticketID uint) Message {
	title := "Новый ответ в обращении"
	body := fmt.Sprintf(`<p>На ваше обращение "%s" поступил ответ службы поддержки.</p>
      <a href="%s/dashboard/support/%d" style="display: inline-block; background-color: #0284c7; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;">
        Открыть обращение
      </a>`, html.EscapeString(subject), html.EscapeString(t.PublicURL), ticketID)

	return Message{
		To:      to,
		Subject: t.subject(title),
		HTML:    t.layout("#0284c7", title, body),
	}
}
