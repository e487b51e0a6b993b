package service

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/nutrifit/internal/config"
)

// mailSender 实际投递函数，测试中替换
type mailSender func(cfg *config.EmailConfig, to string, msg []byte) error

// EmailService 邮件发送服务
type EmailService struct {
	cfg  *config.EmailConfig
	send mailSender
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg, send: deliverSMTP}
}

// OwnerAddress 店主通知邮箱
func (s *EmailService) OwnerAddress() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.OwnerAddress()
}

// SendOrderConfirmation 发送买家订单确认邮件
func (s *EmailService) SendOrderConfirmation(toEmail string, summary OrderSummary) error {
	subject, body := buildOrderConfirmationContent(summary)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendOrderReceived 发送店主新订单提醒
func (s *EmailService) SendOrderReceived(toEmail string, summary OrderSummary) error {
	subject, body := buildOrderReceivedContent(summary)
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)
	send := s.send
	if send == nil {
		send = deliverSMTP
	}
	if err := normalizeEmailSendError(send(s.cfg, toEmail, []byte(msg))); err != nil {
		if errors.Is(err, ErrNotification) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrNotification, err)
	}
	return nil
}

func deliverSMTP(cfg *config.EmailConfig, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	if cfg.UseSSL {
		return sendMailWithSSL(addr, auth, cfg.Host, cfg.From, []string{to}, msg)
	}
	if cfg.UseTLS {
		return sendMailWithStartTLS(addr, auth, cfg.Host, cfg.From, []string{to}, msg)
	}
	return sendMailPlain(addr, auth, cfg.Host, cfg.From, []string{to}, msg)
}

func buildOrderConfirmationContent(summary OrderSummary) (string, string) {
	subject := "✅ NutriFit Order Confirmation"
	body := fmt.Sprintf(`Hi there! 👋

Your order has been confirmed successfully. Here's a summary:

%s

Total Amount: %s

Your order will be delivered soon.
Please pay upon delivery. 💵

Thank you for shopping with NutriFit 💪
Team NutriFit`, summary.Text(), summary.TotalText())
	return subject, body
}

func buildOrderReceivedContent(summary OrderSummary) (string, string) {
	subject := "📦 New NutriFit Order Received"
	body := fmt.Sprintf(`Hey Owner 👑,

You just received a new order!

Customer Email: %s

Items Ordered:
%s

Total: %s

Time to process and deliver this order 🚚`, summary.Email, summary.Text(), summary.TotalText())
	return subject, body
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
