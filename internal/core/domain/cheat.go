package domain

// Cheat is a named code string for a game on a platform. Cheats are owned by
// the data gateway and never mutated by this service.
type Cheat struct {
	ID       int64  `json:"id"       bson:"_id"      validate:"required,gt=0"`
	Name     string `json:"name"     bson:"name"     validate:"required"`
	Code     string `json:"code"     bson:"code"     validate:"required"`
	Category string `json:"category" bson:"category"`
	Game     string `json:"game"     bson:"game"     validate:"required"`
	Platform string `json:"platform" bson:"platform" validate:"required"`
}

// Categories returns the distinct categories of cheats in first-seen order.
func Categories(cheats []Cheat) []string {
	seen := make(map[string]struct{}, len(cheats))
	out := make([]string, 0)
	for _, c := range cheats {
		if c.Category == "" {
			continue
		}
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		out = append(out, c.Category)
	}
	return out
}
