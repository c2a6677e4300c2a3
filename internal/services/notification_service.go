package services

import "strings"

// NoticeTarget names the page region a flashed error belongs to.
type NoticeTarget string

const (
	NoticeTargetGeneral        NoticeTarget = "general"
	NoticeTargetChangePassword NoticeTarget = "change_password"
)

var passwordChangeErrors = []error{
	ErrPasswordChangeInvalidInput,
	ErrPasswordMismatch,
	ErrInvalidCurrentPassword,
	ErrNewPasswordMustDiffer,
	ErrWeakPassword,
}

// NotificationService decides which status and error notices a page shows after a redirect.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (service *NotificationService) ResolveStatus(flashSuccess string, queryStatus string) string {
	return firstNonEmptyTrimmed(flashSuccess, queryStatus)
}

func (service *NotificationService) ResolveErrorSource(flashError string, queryError string) string {
	return firstNonEmptyTrimmed(flashError, queryError)
}

func (service *NotificationService) ClassifyErrorSource(errorSource string) NoticeTarget {
	if service.IsChangePasswordError(errorSource) {
		return NoticeTargetChangePassword
	}
	return NoticeTargetGeneral
}

// IsChangePasswordError matches the reason text of the password change rules.
func (service *NotificationService) IsChangePasswordError(reason string) bool {
	normalized := strings.ToLower(strings.TrimSpace(reason))
	if normalized == "" {
		return false
	}
	for _, err := range passwordChangeErrors {
		if normalized == strings.ToLower(ErrorReason(err)) {
			return true
		}
	}
	return false
}

func firstNonEmptyTrimmed(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
