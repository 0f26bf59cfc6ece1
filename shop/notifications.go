package shop

import (
	"context"

	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/transport"
)

// NotificationSettings configures how the store owner is notified about
// activity. Admin console screens read and write this as one document.
type NotificationSettings struct {
	WhatsAppEnabled   bool   `json:"whatsappEnabled"`
	WhatsAppNumber    string `json:"whatsappNumber,omitempty"`
	EmailEnabled      bool   `json:"emailEnabled"`
	EmailAddress      string `json:"emailAddress,omitempty"`
	NotifyOnOrder     bool   `json:"notifyOnOrder"`
	NotifyOnWholesale bool   `json:"notifyOnWholesale"`
}

// NotificationService manages notification settings. Admin-only endpoints,
// authenticated transport.
type NotificationService struct {
	api *transport.Transport
}

// NewNotificationService wraps the authenticated transport.
func NewNotificationService(authenticated *transport.Transport) *NotificationService {
	return &NotificationService{api: authenticated}
}

// GetSettings returns the current settings.
func (s *NotificationService) GetSettings(ctx context.Context) (NotificationSettings, error) {
	var env model.Envelope
	if err := s.api.Get(ctx, "/api/NotificationSettings", &env); err != nil {
		return NotificationSettings{}, err
	}
	return unwrap[NotificationSettings](env)
}

// UpdateSettings replaces the settings document.
func (s *NotificationService) UpdateSettings(ctx context.Context, settings NotificationSettings) error {
	var env model.Envelope
	if err := s.api.Put(ctx, "/api/NotificationSettings", settings, &env); err != nil {
		return err
	}
	_, err := unwrap[struct{}](env)
	return err
}
