package pricing

const (
	ShippingPickup   = "pickup"
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

const (
	pickupCost   = 0
	standardCost = 50
	expressCost  = 100
)

// framePrices keys frame sizes in inches to the per-unit price in baht.
var framePrices = map[string]float64{
	"8x10":  150,
	"10x12": 200,
	"16x20": 600,
}

// plaquePrices keys plaque sizes in centimeters to the price in baht.
var plaquePrices = map[string]float64{
	"15x20": 1000,
	"14x29": 1700,
}

// ShippingCost returns the flat shipping rate for a method. Unknown or
// missing methods fall back to the standard rate.
func ShippingCost(method string) float64 {
	switch method {
	case ShippingPickup:
		return pickupCost
	case ShippingExpress:
		return expressCost
	default:
		return standardCost
	}
}

func FramePrice(size string) (float64, bool) {
	p, ok := framePrices[size]
	return p, ok
}

func PlaquePrice(size string) (float64, bool) {
	p, ok := plaquePrices[size]
	return p, ok
}

// GrandTotal is unit price times quantity plus the shipping rate for method.
func GrandTotal(unitPrice float64, quantity uint, method string) float64 {
	return unitPrice*float64(quantity) + ShippingCost(method)
}
