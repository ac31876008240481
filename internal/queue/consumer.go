package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartResetMailConsumer connects to RabbitMQ, declares the reset queue
// and sends one mail per message.  It runs a reconnect loop with backoff
// and never brings the server down: processing errors are logged and the
// offending message is rejected without requeue.
func StartResetMailConsumer(from string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(BrokerURL())
		if err != nil {
			log.Printf("reset-mailer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, from); err != nil {
			log.Printf("reset-mailer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, from string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("reset-mailer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(ResetQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ResetQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleResetMessage(d.Body, from); err != nil {
			log.Printf("reset-mailer: handle message failed: %v", err)
			_ = d.Nack(false, false) // do not requeue, avoid tight redelivery loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleResetMessage(body []byte, from string) error {
	var ev PasswordResetRequested
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return sendResetMail(from, ev)
}

// sendResetMail delivers the reset link over plain SMTP.  Host and port
// come from SMTP_HOST/SMTP_PORT; SMTP_USER/SMTP_PASS enable auth when set.
func sendResetMail(from string, ev PasswordResetRequested) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "25"
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password reset\r\n\r\n"+
		"Hello, %s!\r\n\r\n"+
		"To reset your password, follow this link: %s\r\n\r\n"+
		"The link is valid for a limited time.\r\n\r\n"+
		"If you did not request a password reset, ignore this message.\r\n",
		from, ev.Email, ev.FirstName, ev.ResetURL)

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASS"), host)
	}
	if err := smtp.SendMail(host+":"+port, auth, from, []string{ev.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", ev.Email, err)
	}
	return nil
}
