package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init(os.Getenv("REDIS_ADDR"))
	}
	return client
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name, role string) error {
	base := strings.TrimRight(appURL(), "/")

	subject := fmt.Sprintf("Welcome to Farm2Market, %s!", name)
	body := fmt.Sprintf("Hi %s, thanks for joining Farm2Market as a %s.\n\nOpen Farm2Market: %s", name, role, base)
	if role == "farmer" {
		body += "\n\nYour account is pending admin approval. You will be able to list produce once approved."
	}

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Role: role, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskWelcomeEmail, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueFarmerApproval tells a farmer the admin's decision on their account
func EnqueueFarmerApproval(userID, email string, approved bool, reason string) error {
	subject := "Your Farm2Market account has been approved"
	body := "Good news! An administrator approved your farmer account. You can now list produce and accept reservations."
	if !approved {
		subject = "Your Farm2Market registration was not approved"
		body = "Unfortunately your farmer registration was not approved."
		if reason != "" {
			body += "\n\nReason: " + reason
		}
	}

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := FarmerApprovalPayload{UserID: userID, Email: email, Approved: approved, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskFarmerApproval, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueuePasswordReset schedules a password reset notification
func EnqueuePasswordReset(userID, email, resetURL string) error {
	expiry := os.Getenv("PASSWORD_RESET_EXP_MINUTES")
	if expiry == "" {
		expiry = "30"
	}
	subject := "Password reset instructions"
	body := fmt.Sprintf("We received a request to reset your Farm2Market password.\n\nTo proceed, open the link below:\n%s\n\nThis link expires in %s minutes. If you did not request this, no action is required.", resetURL, expiry)

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := PasswordResetPayload{UserID: userID, Email: email, ResetURL: resetURL, Envelope: env, Requested: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskPasswordReset, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueLifecycleEmail mirrors an in-app notification to email.
func EnqueueLifecycleEmail(n Notice, email string) error {
	env := EmailEnvelope{To: email, Subject: n.Title, Body: n.Message}
	payload := LifecycleEmailPayload{
		UserID:        n.UserID,
		Type:          n.Type,
		ReservationID: n.ReservationID,
		TransactionID: n.TransactionID,
		Envelope:      env,
		SentAt:        time.Now(),
	}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskLifecycleEmail, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueBroadcast fans an admin announcement out to one recipient.
func EnqueueBroadcast(adminID, email, subject, body string) error {
	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := BroadcastPayload{AdminID: adminID, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskBroadcast, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("broadcasts"))
	return err
}

func appURL() string {
	if v := os.Getenv("APP_URL"); v != "" {
		return v
	}
	return "http://localhost:3000"
}
