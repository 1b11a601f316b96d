package mockapi

import (
	"net/http"

	"github.com/travelmate/tripplanner/client"
)

// DefaultCatalog seeds the mock with Bangkok attractions.
func DefaultCatalog() []client.CatalogItem {
	return []client.CatalogItem{
		{ID: 1, Name: "Grand Palace", Cost: client.Units(500), Image: "https://images.example.com/grand-palace.jpg", Description: "Former royal residence and home of the Emerald Buddha."},
		{ID: 2, Name: "Street Food Tour", Cost: client.Units(50), Image: "https://images.example.com/street-food.jpg", Description: "Evening walk through Yaowarat's food stalls."},
		{ID: 3, Name: "Wat Arun", Cost: client.Units(100), Image: "https://images.example.com/wat-arun.jpg", Description: "Temple of Dawn on the Thonburi bank."},
		{ID: 4, Name: "Chatuchak Weekend Market", Cost: client.Units(0), Image: "https://images.example.com/chatuchak.jpg", Description: "Over fifteen thousand stalls, open Saturday and Sunday."},
		{ID: 5, Name: "Chao Phraya Dinner Cruise", Cost: client.Cents(129950), Image: "https://images.example.com/cruise.jpg", Description: "Buffet dinner on the river past the lit temples."},
	}
}

func (s *Server) listCatalog(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	items := make([]client.CatalogItem, len(s.catalog))
	copy(items, s.catalog)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, items)
}
