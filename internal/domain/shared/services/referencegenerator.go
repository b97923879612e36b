package services

import (
	"fmt"

	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// ReferenceGenerator produces unique human-readable references for payouts
// and locally initiated transactions.
type ReferenceGenerator interface {
	Generate(prefix string) string
}

type DefaultReferenceGenerator struct{}

func NewReferenceGenerator() ReferenceGenerator {
	return &DefaultReferenceGenerator{}
}

func (g *DefaultReferenceGenerator) Generate(prefix string) string {
	now := biztime.NowUTC()
	return fmt.Sprintf("%s%s%06d",
		prefix,
		now.Format("20060102150405"),
		now.Nanosecond()%1000000,
	)
}
