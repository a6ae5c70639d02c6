package featureflags

import (
	"os"
	"strings"
)

// PublicCouponValidation exposes POST /api/coupons/validate without a bearer
// token so storefront pages can check codes before sign-in.
const PublicCouponValidation = "public_coupon_validation"

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
