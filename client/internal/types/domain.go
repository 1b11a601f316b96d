package types

import "encoding/json"

// ------------------------------
// Core Domain Entities
// ------------------------------

// UserRecord is the identity record returned by login/register and cached locally.
type UserRecord struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// CatalogItem is a selectable point of interest. Identity is ID.
type CatalogItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Cost        Money  `json:"cost"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts the legacy "desc" field as the description.
func (c *CatalogItem) UnmarshalJSON(b []byte) error {
	type plain CatalogItem
	var raw struct {
		plain
		Desc string `json:"desc"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = CatalogItem(raw.plain)
	if c.Description == "" {
		c.Description = raw.Desc
	}
	return nil
}

// Schedule is a persisted itinerary as stored by the remote API.
type Schedule struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"userId"`
	Title       string        `json:"title"`
	StartDate   Date          `json:"startDate"`
	EndDate     Date          `json:"endDate"`
	Attractions []CatalogItem `json:"attractions"`
	TotalCost   Money         `json:"totalCost"`
}
