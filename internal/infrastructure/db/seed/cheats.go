// Package seed holds the sample cheat catalog loaded into empty development
// databases.
package seed

import "github.com/cheatvault/gta-cheats-api/internal/core/domain"

// Cheats returns a small GTA San Andreas catalog for PC and PlayStation.
func Cheats() []domain.Cheat {
	return []domain.Cheat{
		{ID: 1, Name: "Santé, armure et 250 000 $", Code: "HESOYAM", Category: "joueur", Game: "gta-sa", Platform: "pc"},
		{ID: 2, Name: "Armes set 1", Code: "LXGIWYL", Category: "armes", Game: "gta-sa", Platform: "pc"},
		{ID: 3, Name: "Armes set 2", Code: "KJKSZPJ", Category: "armes", Game: "gta-sa", Platform: "pc"},
		{ID: 4, Name: "Rhino", Code: "AIWPRTON", Category: "véhicules", Game: "gta-sa", Platform: "pc"},
		{ID: 5, Name: "Jetpack", Code: "YECGAA", Category: "véhicules", Game: "gta-sa", Platform: "pc"},
		{ID: 6, Name: "Recherche supprimée", Code: "ASNAEB", Category: "police", Game: "gta-sa", Platform: "pc"},
		{ID: 7, Name: "Recherche +2 étoiles", Code: "OSRBLHH", Category: "police", Game: "gta-sa", Platform: "pc"},
		{ID: 8, Name: "Beau temps", Code: "AFZLLQLL", Category: "monde", Game: "gta-sa", Platform: "pc"},
		{ID: 9, Name: "Santé, armure et 250 000 $", Code: "R1, R2, L1, X, ←, ↓, →, ↑, ←, ↓, →, ↑", Category: "joueur", Game: "gta-sa", Platform: "playstation"},
		{ID: 10, Name: "Rhino", Code: "○, ○, L1, ○, ○, ○, L1, L2, R1, △, ○, △", Category: "véhicules", Game: "gta-sa", Platform: "playstation"},
		{ID: 11, Name: "Recherche supprimée", Code: "R1, R1, ○, R2, →, ←, →, ←, →, ←", Category: "police", Game: "gta-sa", Platform: "playstation"},
		{ID: 12, Name: "Santé, armure et 250 000 $", Code: "HESOYAM", Category: "joueur", Game: "gta-vc", Platform: "pc"},
	}
}
