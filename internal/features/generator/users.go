// Package generator — users.go придумывает ники игроков.
// Ник = префикс + суффикс + (иногда) цифры; часть ников маскируется: "Lu***77".
package generator

import (
	"strconv"
	"strings"
)

const returningUserChance = 0.25

var (
	handlePrefixes = []string{
		"Lucky", "Gold", "Neon", "Star", "Diamond", "Royal", "Turbo", "Wild", "Mega", "Silver",
		"Dark", "Night", "Crazy", "Big", "Iron", "Red", "Blue", "Cash", "Ace", "Spin",
		"Jack", "Slot", "Fire", "Ice", "Pro", "Vegas", "Shadow", "Alpha", "Storm", "Cosmo",
	}
	handleSuffixes = []string{
		"Player", "Winner", "Hunter", "King", "Queen", "Master", "Roller", "Gamer", "Wolf", "Tiger",
		"Rider", "Shark", "Hawk", "Fox", "Bet", "Spinner", "Boss", "Hero", "Joker", "Lion",
	}
)

// randomHandle собирает новый ник.
func randomHandle(src Source) string {
	var b strings.Builder
	b.WriteString(handlePrefixes[src.IntN(len(handlePrefixes))])
	b.WriteString(handleSuffixes[src.IntN(len(handleSuffixes))])

	switch r := src.Float64(); {
	case r < 0.35:
		b.WriteString(strconv.Itoa(randInt(src, 1, 99)))
	case r < 0.55:
		b.WriteString(strconv.Itoa(randInt(src, 100, 9999)))
	}

	name := b.String()
	if src.Float64() < 0.3 {
		return maskHandle(name)
	}
	return name
}

// maskHandle оставляет первые две и последние две буквы: "LuckyWolf77" → "Lu***77".
func maskHandle(name string) string {
	r := []rune(name)
	if len(r) <= 5 {
		return name
	}
	return string(r[:2]) + "***" + string(r[len(r)-2:])
}

// pickUser выбирает игрока: иногда возвращается недавний (но не предыдущий),
// иначе придумывается новый ник, которого нет в окне недавних.
func (g *Generator) pickUser() string {
	recent := g.state.recentUsers
	prev, hasPrev := recent.Newest()

	if recent.Len() > 1 && g.src.Float64() < returningUserChance {
		var candidates []string
		seen := make(map[string]struct{}, recent.Len())
		for _, u := range recent.Values() {
			if _, dup := seen[u]; dup || (hasPrev && u == prev) {
				continue
			}
			seen[u] = struct{}{}
			candidates = append(candidates, u)
		}
		if len(candidates) > 0 {
			return candidates[g.src.IntN(len(candidates))]
		}
	}

	var name string
	for range 5 {
		name = randomHandle(g.src)
		if !recent.Contains(name) {
			break
		}
	}
	return name
}
