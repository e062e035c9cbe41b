package configsmailer

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"kayit.link/configs/configslog"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer SMTP üzerinden onay e-postası gönderir.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// ConfirmationData onay e-postasının içeriği.
type ConfirmationData struct {
	To            string
	Name          string
	EventTitle    string
	ReferenceCode string
	EventDate     time.Time
	CustomSubject string // Etkinliğe özel konu (boşsa varsayılan kullanılır)
	CustomBody    string // Etkinliğe özel ek metin
	AttachmentURL string // Opsiyonel ek dosya (object storage URL'i)
}

// NewMailerFromEnv SMTP ayarları tanımlıysa bir Mailer döndürür, değilse nil.
// Mailer'ın nil olması hata değildir: e-posta yapılandırılmamış demektir ve
// kayıt akışı e-postasız devam eder.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASSWORD")
	if host == "" || user == "" || pass == "" {
		configslog.SLog.Warn("SMTP ayarları eksik, onay e-postaları gönderilmeyecek.")
		return nil
	}
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// QRImageURL referans kodunu kodlayan QR görselinin URL'ini üretir.
func QRImageURL(referenceCode string) string {
	return "https://quickchart.io/qr?text=" + url.QueryEscape(referenceCode) + "&size=200&margin=2"
}

// SendConfirmation kayıt onay e-postasını gönderir.
// Başarısızlık çağıran tarafta loglanıp yutulur, kayıt işlemini asla bozmaz.
func (m *Mailer) SendConfirmation(data ConfirmationData) error {
	if m == nil {
		return fmt.Errorf("mailer yapılandırılmamış")
	}

	subject := data.CustomSubject
	if strings.TrimSpace(subject) == "" {
		subject = "Registration Confirmed: " + data.EventTitle
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, "Kayıt Sistemi"))
	msg.SetHeader("To", data.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", buildConfirmationHTML(data))

	if err := m.dialer.DialAndSend(msg); err != nil {
		configslog.Log.Error("Onay e-postası gönderilemedi",
			zap.String("to", data.To),
			zap.String("reference_code", data.ReferenceCode),
			zap.Error(err),
		)
		return err
	}
	configslog.SLog.Infof("Onay e-postası gönderildi: %s (%s)", data.To, data.ReferenceCode)
	return nil
}

func buildConfirmationHTML(data ConfirmationData) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h1 style="color: #333;">Registration Confirmed</h1>`)
	b.WriteString(`<p>Hi ` + htmlEscape(data.Name) + `,</p>`)
	b.WriteString(`<p>You are successfully registered for <strong>` + htmlEscape(data.EventTitle) + `</strong>.</p>`)

	if strings.TrimSpace(data.CustomBody) != "" {
		b.WriteString(`<div style="margin: 20px 0; padding: 15px; background-color: #f9fafb; border-left: 4px solid #333; white-space: pre-wrap;">`)
		b.WriteString(htmlEscape(data.CustomBody))
		b.WriteString(`</div>`)
	}

	b.WriteString(`<div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0; text-align: center;">`)
	b.WriteString(`<p style="margin: 0; font-size: 14px; color: #666;">Your Reference Code:</p>`)
	b.WriteString(`<h2 style="margin: 10px 0; font-family: monospace; font-size: 32px; letter-spacing: 2px;">` + htmlEscape(data.ReferenceCode) + `</h2>`)
	b.WriteString(`</div>`)

	b.WriteString(`<div style="text-align: center; margin: 20px 0;">`)
	b.WriteString(`<img src="` + QRImageURL(data.ReferenceCode) + `" alt="QR Code" width="200" height="200" />`)
	b.WriteString(`</div>`)

	if data.AttachmentURL != "" {
		b.WriteString(`<p><a href="` + data.AttachmentURL + `">Event attachment</a></p>`)
	}

	b.WriteString(`<p><strong>Date:</strong> ` + data.EventDate.Format("02.01.2006 15:04") + `</p>`)
	b.WriteString(`</div>`)
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
