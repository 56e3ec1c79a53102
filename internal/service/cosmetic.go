package service

import (
	"math/rand"

	"github.com/brawlhub/elo-ladder/internal/domain"
)

// maps is the standard ranked map pool, used for the 3-map suggestion
// attached to solo and trio matches.
var maps = []string{
	"Hard Rock Mine",
	"Gem Fort",
	"Undermine",
	"Triple Dribble",
	"Center Stage",
	"Junior League",
	"Shooting Star",
	"Layer Cake",
	"Hideout",
	"Hot Potato",
	"Safe Zone",
	"Bridge Too Far",
	"Open Business",
	"Ring of Fire",
	"Belle's Rock",
	"Goldarm Gulch",
}

// chaosMaps extends the pool with every rotating and special map.
var chaosMaps = append([]string{
	"Double Swoosh", "Crystal Arcade", "Deathcap Trap", "Four Squared",
	"Last Stop", "Catacombs", "Gem Temple", "Sneaky Fields",
	"Super Stadium", "Backyard Bowl", "Pinball Dreams", "Penalty Kick",
	"Kaboom Canyon", "Pit Stop", "Bridge Too Far", "G.G. Corral",
	"Island Invasion", "Out in the Open", "Flaring Phoenix", "Riverside Ring",
	"Skull Creek", "Dry Season", "Parallel Plays", "Dueling Beetles",
	"Split", "Controller Chaos", "Square Off", "Public Eye",
	"Feast or Famine", "Stormy Plains", "Death Valley", "Cavern Churn",
}, maps...)

// chaosBrawlers is the draw pool for the one-brawler-per-participant
// assignment.
var chaosBrawlers = []string{
	"Shelly", "Nita", "Colt", "Bull", "Jessie", "Brock", "Dynamike",
	"Bo", "Tick", "8-Bit", "Emz", "El Primo", "Barley", "Poco", "Rosa",
	"Penny", "Carl", "Jacky", "Gus", "Rico", "Darryl", "Piper", "Pam",
	"Frank", "Bibi", "Bea", "Nani", "Edgar", "Griff", "Grom", "Bonnie",
	"Otis", "Sam", "Chester", "Gray", "Mandy", "R-T", "Willow",
	"Maisie", "Mortis", "Tara", "Gene", "Max", "Mr. P", "Sprout",
	"Byron", "Squeak", "Lou", "Ruffs", "Belle", "Buzz", "Ash", "Lola",
	"Eve", "Janet", "Stu", "Buster", "Fang", "Hank", "Pearl",
	"Larry & Lawrie", "Angelo", "Berry", "Spike", "Crow", "Leon",
	"Sandy", "Amber", "Meg", "Cordelius", "Kit", "Draco",
}

// chaosModifiers is the random rule-twist pool.
var chaosModifiers = []string{
	"Double Speed", "Double Damage", "Double Health", "Fast Reload",
	"Fast Super Charge", "Random Invisibility", "Permanent Shield",
	"Bouncing Projectiles", "Area Damage", "Constant Healing",
	"Random Teleport", "Low Gravity", "Giant Size", "Tiny Size",
	"Homing Missiles", "Death Explosion", "Double Jump", "Moving Walls",
	"Lava Floor", "Fog of War", "Energy Boost", "Night Vision",
	"Rage Mode", "Total Chaos",
}

// CosmeticGenerator produces the presentation payload attached to a
// formed match. It never feeds settlement logic.
type CosmeticGenerator func() domain.CosmeticPayload

// NewCosmeticGenerator returns the generator for a mode: a 3-map
// suggestion for solo/trio, a full random setup for chaos.
func NewCosmeticGenerator(mode domain.Mode) CosmeticGenerator {
	if mode == domain.ModeChaos {
		return chaosCosmetic
	}
	return mapSuggestion
}

func mapSuggestion() domain.CosmeticPayload {
	return domain.CosmeticPayload{SuggestedMaps: sample(maps, 3)}
}

func chaosCosmetic() domain.CosmeticPayload {
	return domain.CosmeticPayload{
		Map:      chaosMaps[rand.Intn(len(chaosMaps))],
		Brawlers: sample(chaosBrawlers, domain.MatchSize),
		Modifier: chaosModifiers[rand.Intn(len(chaosModifiers))],
	}
}

// sample picks n distinct elements uniformly without replacement.
func sample(pool []string, n int) []string {
	picked := make([]string, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked
}
