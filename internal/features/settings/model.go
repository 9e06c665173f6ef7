package settings

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GatewayConfig holds a tenant's WhatsApp gateway credentials. They are
// passed explicitly into the chat transport on every dispatch.
type GatewayConfig struct {
	PhoneNumberID string `json:"phone_number_id" bson:"phone_number_id"`
	AccessToken   string `json:"access_token" bson:"access_token"`
}

// Settings is the per-tenant settings document.
type Settings struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID  primitive.ObjectID `json:"tenant_id" bson:"tenant_id"`
	Gateway   *GatewayConfig     `json:"gateway,omitempty" bson:"gateway,omitempty"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
