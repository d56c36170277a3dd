// internal/services/notification_service.go
package services

import (
	"sync"

	"github.com/averbacoes/backoffice/internal/i18n"
)

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a toast message returned alongside a response.
type Notification struct {
	Tipo     NotificationType `json:"tipo"`
	Mensagem string           `json:"mensagem"`
	Arquivo  string           `json:"arquivo,omitempty"`
}

// Notifier collects translated notifications for one request. It is safe
// for use by concurrent uploads.
type Notifier struct {
	mu    sync.Mutex
	lang  string
	items []Notification
}

func NewNotifier(lang string) *Notifier {
	return &Notifier{lang: lang, items: []Notification{}}
}

func (n *Notifier) add(tipo NotificationType, arquivo, key string, args ...interface{}) {
	msg := i18n.T(n.lang, key, args...)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{Tipo: tipo, Mensagem: msg, Arquivo: arquivo})
}

func (n *Notifier) Success(key string, args ...interface{}) {
	n.add(NotificationSuccess, "", key, args...)
}

func (n *Notifier) FileError(arquivo, key string, args ...interface{}) {
	n.add(NotificationError, arquivo, key, args...)
}

func (n *Notifier) List() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}
