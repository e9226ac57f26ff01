package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/reelsync/internal/toast"
)

var _ list.Item = toastItem{}

// toastItem wraps [toast.Toast] to implement [list.Item].
type toastItem struct {
	toast toast.Toast
}

func (i toastItem) FilterValue() string { return i.toast.Message }
func (i toastItem) Title() string {
	if i.toast.Title != "" {
		return fmt.Sprintf("%s: %s", i.toast.Title, i.toast.Message)
	}
	return i.toast.Message
}
func (i toastItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.toast.Type, i.toast.CreatedAt.Format("15:04:05"))
	if i.toast.Link != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.toast.Link)
	}
	return desc
}
