package pricing

import (
	"log"
	"strings"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
)

// zoneKeywords maps address markers to zone names. Order matters: the most
// specific district names come first, the generic city name last. First
// match wins.
var zoneKeywords = []struct {
	marker string
	zone   string
}{
	{"машиностроител", "Машиностроитель"},
	{"ремзавод", "Ремзавод"},
	{"промузел", "Промузел"},
	{"промышленн", "Промузел"},
	{"дружб", "Дружба"},
	{"заря", "Заря"},
	{"центр", "Центр"},
}

// ResolveZone maps a free-text delivery address to a delivery zone by
// keyword matching. This is a best-effort heuristic, not a geocoder: it
// never fails, it only degrades to the standard zone, so callers must not
// assume zone accuracy.
func ResolveZone(addressText string) domain.DeliveryZone {
	addr := strings.ToLower(addressText)
	for _, kw := range zoneKeywords {
		if strings.Contains(addr, kw.marker) {
			return ZoneByName(kw.zone)
		}
	}
	log.Printf("zone resolution fell back to %q for address %q", StandardZoneName, addressText)
	return ZoneByName(StandardZoneName)
}
