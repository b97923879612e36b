package valueobjects

import "fmt"

// PlanFeatures describes the entitlements a subscription plan grants.
type PlanFeatures struct {
	maxResolution        string
	adFree               bool
	premiumContentAccess bool
	earlyAccess          bool
}

var validResolutions = map[string]bool{
	"240p":  true,
	"360p":  true,
	"480p":  true,
	"720p":  true,
	"1080p": true,
	"1440p": true,
}

func NewPlanFeatures(maxResolution string, adFree, premiumContentAccess, earlyAccess bool) (PlanFeatures, error) {
	if !validResolutions[maxResolution] {
		return PlanFeatures{}, fmt.Errorf("invalid resolution cap: %s", maxResolution)
	}
	return PlanFeatures{
		maxResolution:        maxResolution,
		adFree:               adFree,
		premiumContentAccess: premiumContentAccess,
		earlyAccess:          earlyAccess,
	}, nil
}

func (f PlanFeatures) MaxResolution() string {
	return f.maxResolution
}

func (f PlanFeatures) AdFree() bool {
	return f.adFree
}

func (f PlanFeatures) PremiumContentAccess() bool {
	return f.premiumContentAccess
}

func (f PlanFeatures) EarlyAccess() bool {
	return f.earlyAccess
}
