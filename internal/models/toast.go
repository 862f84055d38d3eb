// ABOUTME: Transient notification shown after user-facing operations
// ABOUTME: Toasts expire on their own after Duration

package models

import "time"

// ToastType is the severity tag of a toast
type ToastType string

const (
	ToastInfo    ToastType = "info"
	ToastSuccess ToastType = "success"
	ToastWarning ToastType = "warning"
	ToastError   ToastType = "error"
)

// Toast is a notification. IDs are random and not guaranteed unique.
type Toast struct {
	ID       int           `json:"id"`
	Message  string        `json:"message"`
	Type     ToastType     `json:"type"`
	Duration time.Duration `json:"duration"`
}
