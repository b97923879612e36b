package valueobjects

import "fmt"

// Gateway identifies an external payment processor.
type Gateway string

const (
	GatewaySSLCommerz  Gateway = "sslcommerz"
	GatewayTwoCheckout Gateway = "2checkout"
)

func NewGateway(value string) (Gateway, error) {
	g := Gateway(value)
	switch g {
	case GatewaySSLCommerz, GatewayTwoCheckout:
		return g, nil
	}
	return "", fmt.Errorf("unsupported payment gateway: %s", value)
}

func (g Gateway) String() string {
	return string(g)
}
