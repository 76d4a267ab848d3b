package holiday

import "time"

type Type string

const (
	TypePublic  Type = "public"
	TypeCompany Type = "company"
)

type Holiday struct {
	Date time.Time
	Name string
	Type Type
}

// NamesByDate keys holiday names by YYYY-MM-DD for calendar lookups.
func NamesByDate(holidays []Holiday) map[string]string {
	out := make(map[string]string, len(holidays))
	for _, h := range holidays {
		out[h.Date.Format("2006-01-02")] = h.Name
	}
	return out
}
