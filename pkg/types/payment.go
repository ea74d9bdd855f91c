package types

// PaymentGateway identifies the payment channel a ledger entry came through.
type PaymentGateway string

const (
	PaymentGatewayUPI       PaymentGateway = "upi"
	PaymentGatewayPayU      PaymentGateway = "payu"
	PaymentGatewayPhonePe   PaymentGateway = "phonepe"
	PaymentGatewayInstamojo PaymentGateway = "instamojo"
	PaymentGatewayOther     PaymentGateway = "other"
)

func (g PaymentGateway) Valid() bool {
	switch g {
	case PaymentGatewayUPI, PaymentGatewayPayU, PaymentGatewayPhonePe, PaymentGatewayInstamojo, PaymentGatewayOther:
		return true
	}
	return false
}

// PaymentType is part of the entitlement key together with (user, content).
type PaymentType string

const (
	PaymentTypePremiumContent    PaymentType = "premium-content"
	PaymentTypeFestParticipation PaymentType = "fest-participation"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypePremiumContent || t == PaymentTypeFestParticipation
}

// PaymentStatus is the ledger entry state. approved and declined are
// terminal; a record never moves back to pending.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusDeclined PaymentStatus = "declined"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusDeclined
}

// GatewayEventStatus is the terminal status reported by a gateway webhook.
type GatewayEventStatus string

const (
	GatewayEventCompleted GatewayEventStatus = "completed"
	GatewayEventFailed    GatewayEventStatus = "failed"
	GatewayEventExpired   GatewayEventStatus = "expired"
)

// ToPaymentStatus maps a gateway terminal event onto the ledger status.
func (s GatewayEventStatus) ToPaymentStatus() (PaymentStatus, bool) {
	switch s {
	case GatewayEventCompleted:
		return PaymentStatusApproved, true
	case GatewayEventFailed, GatewayEventExpired:
		return PaymentStatusDeclined, true
	}
	return "", false
}

// ContentType categorizes catalog entries.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
	ContentTypeShow   ContentType = "show"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeMovie || t == ContentTypeSeries || t == ContentTypeShow
}

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
