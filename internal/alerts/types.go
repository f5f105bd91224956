package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail       = "email:welcome"
	TaskFarmerApproval     = "email:farmer_approval"
	TaskPasswordReset      = "email:password_reset"
	TaskLifecycleEmail     = "email:lifecycle"
	TaskBroadcast          = "email:broadcast"
)

// Notification type tags stored on notification rows.
const (
	TypeReservationPending  = "reservation_pending"
	TypeReservationApproved = "reservation_approved"
	TypeReservationRejected = "reservation_rejected"
	TypeReservationCancelled = "reservation_cancelled"
	TypeReservationReady     = "reservation_ready"
	TypeReceiptUploaded     = "receipt_uploaded"
	TypeReceiptVerified     = "receipt_verified"
	TypeReceiptRejected     = "receipt_rejected"
	TypePaymentReceived     = "payment_received"
	TypeNewMessage          = "new_message"
	TypeSystemAnnouncement  = "system_announcement"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Farmer approval decision payload
type FarmerApprovalPayload struct {
	UserID   string        `json:"user_id"`
	Email    string        `json:"email"`
	Approved bool          `json:"approved"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Password reset payload
type PasswordResetPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// Lifecycle email payload mirrors an in-app notification for a
// reservation or transaction state transition.
type LifecycleEmailPayload struct {
	UserID        string        `json:"user_id"`
	Type          string        `json:"type"`
	ReservationID string        `json:"reservation_id,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Envelope      EmailEnvelope `json:"envelope"`
	SentAt        time.Time     `json:"sent_at"`
}

// Broadcast payload (admin announcement fan-out)
type BroadcastPayload struct {
	AdminID  string        `json:"admin_id"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}
