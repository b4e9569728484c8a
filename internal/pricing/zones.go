// Package pricing holds the static delivery-zone table and the address
// heuristics that map a free-text address onto it.
package pricing

import "github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"

// StandardZoneName is the designated fallback when an address cannot be
// matched to a district.
const StandardZoneName = "Центр"

var zones = map[string]domain.DeliveryZone{
	"Центр":           {Name: "Центр", BaseCost: 100, FreeDeliveryThreshold: 800},
	"Дружба":          {Name: "Дружба", BaseCost: 100, FreeDeliveryThreshold: 800},
	"Машиностроитель": {Name: "Машиностроитель", BaseCost: 150, FreeDeliveryThreshold: 1000},
	"Заря":            {Name: "Заря", BaseCost: 150, FreeDeliveryThreshold: 1000},
	"Ремзавод":        {Name: "Ремзавод", BaseCost: 200, FreeDeliveryThreshold: 1200},
	"Промузел":        {Name: "Промузел", BaseCost: 300, FreeDeliveryThreshold: 1500},
}

// ZoneByName returns the zone for a name, degrading to the standard zone for
// unknown names so pricing is always resolvable.
func ZoneByName(name string) domain.DeliveryZone {
	if z, ok := zones[name]; ok {
		return z
	}
	return zones[StandardZoneName]
}

// Zones returns a copy of the table, mostly for diagnostics endpoints.
func Zones() []domain.DeliveryZone {
	out := make([]domain.DeliveryZone, 0, len(zones))
	for _, z := range zones {
		out = append(out, z)
	}
	return out
}

// Cost computes the delivery cost for a subtotal. Reaching the free-delivery
// threshold exactly is enough for free delivery.
func Cost(zone domain.DeliveryZone, subtotal float64) float64 {
	if subtotal >= zone.FreeDeliveryThreshold {
		return 0
	}
	return zone.BaseCost
}

// CostFor is Cost with name-based lookup, unknown names included.
func CostFor(zoneName string, subtotal float64) float64 {
	return Cost(ZoneByName(zoneName), subtotal)
}
