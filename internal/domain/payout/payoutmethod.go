package payout

import (
	"fmt"
	"time"

	vo "github.com/vistream-inc/vistream/internal/domain/payout/valueobjects"
	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// PayoutMethod is a channel's destination account for disbursements. Only
// verified methods can receive money; one method per channel is the default.
type PayoutMethod struct {
	id             uint
	channelID      uint
	methodType     vo.PayoutMethodType
	accountName    string
	accountDetails map[string]interface{}
	isDefault      bool
	isVerified     bool
	verifiedAt     *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewPayoutMethod(channelID uint, methodType vo.PayoutMethodType, accountName string, accountDetails map[string]interface{}) (*PayoutMethod, error) {
	if channelID == 0 {
		return nil, fmt.Errorf("channel ID is required")
	}
	if accountName == "" {
		return nil, fmt.Errorf("account name is required")
	}
	if accountDetails == nil {
		accountDetails = make(map[string]interface{})
	}

	now := biztime.NowUTC()
	return &PayoutMethod{
		channelID:      channelID,
		methodType:     methodType,
		accountName:    accountName,
		accountDetails: accountDetails,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (m *PayoutMethod) ID() uint                               { return m.id }
func (m *PayoutMethod) ChannelID() uint                        { return m.channelID }
func (m *PayoutMethod) MethodType() vo.PayoutMethodType        { return m.methodType }
func (m *PayoutMethod) AccountName() string                    { return m.accountName }
func (m *PayoutMethod) AccountDetails() map[string]interface{} { return m.accountDetails }
func (m *PayoutMethod) IsDefault() bool                        { return m.isDefault }
func (m *PayoutMethod) IsVerified() bool                       { return m.isVerified }
func (m *PayoutMethod) VerifiedAt() *time.Time                 { return m.verifiedAt }
func (m *PayoutMethod) CreatedAt() time.Time                   { return m.createdAt }
func (m *PayoutMethod) UpdatedAt() time.Time                   { return m.updatedAt }

// Verify marks the method usable for disbursements. Idempotent.
func (m *PayoutMethod) Verify() {
	if m.isVerified {
		return
	}
	now := biztime.NowUTC()
	m.isVerified = true
	m.verifiedAt = &now
	m.updatedAt = now
}

func (m *PayoutMethod) MarkDefault() {
	m.isDefault = true
	m.updatedAt = biztime.NowUTC()
}

func (m *PayoutMethod) UnmarkDefault() {
	m.isDefault = false
	m.updatedAt = biztime.NowUTC()
}

// SetID sets the method ID after persistence.
func (m *PayoutMethod) SetID(id uint) {
	m.id = id
}

// PayoutMethodReconstructParams carries persisted state back into the entity.
type PayoutMethodReconstructParams struct {
	ID             uint
	ChannelID      uint
	MethodType     vo.PayoutMethodType
	AccountName    string
	AccountDetails map[string]interface{}
	IsDefault      bool
	IsVerified     bool
	VerifiedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReconstructPayoutMethod rebuilds a payout method from persistence.
func ReconstructPayoutMethod(p PayoutMethodReconstructParams) *PayoutMethod {
	details := p.AccountDetails
	if details == nil {
		details = make(map[string]interface{})
	}
	return &PayoutMethod{
		id:             p.ID,
		channelID:      p.ChannelID,
		methodType:     p.MethodType,
		accountName:    p.AccountName,
		accountDetails: details,
		isDefault:      p.IsDefault,
		isVerified:     p.IsVerified,
		verifiedAt:     p.VerifiedAt,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}
}
