package model

// NotificationType is the severity of a user-facing notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationDanger  NotificationType = "danger"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationDanger:
		return true
	}
	return false
}

// Notification is a short human-readable message shown once to the end user.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

func Success(msg string) Notification { return Notification{Type: NotificationSuccess, Message: msg} }
func Danger(msg string) Notification  { return Notification{Type: NotificationDanger, Message: msg} }
func Info(msg string) Notification    { return Notification{Type: NotificationInfo, Message: msg} }
func Warning(msg string) Notification { return Notification{Type: NotificationWarning, Message: msg} }
