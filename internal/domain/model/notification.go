package model

import "time"

type NotificationType string

const (
	NotificationPaymentSuccess     NotificationType = "payment_success"
	NotificationDeviceDisconnected NotificationType = "device_disconnected"
)

type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	EmailSent bool
	IsRead    bool
	CreatedAt time.Time
}

// NotificationPreferences are opt-outs; a missing row means everything is on.
type NotificationPreferences struct {
	UserID           string
	PaymentSuccess   bool
	DeviceDisconnect bool
}

func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{UserID: userID, PaymentSuccess: true, DeviceDisconnect: true}
}
