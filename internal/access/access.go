// Package access implements the allow-list check for mutating commands.
package access

// Guard answers whether a Telegram user may mutate the store. An empty
// allow-list means open mode: everyone is authorized.
type Guard struct {
	allowed map[int64]struct{}
}

func NewGuard(ids []int64) *Guard {
	g := &Guard{allowed: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		g.allowed[id] = struct{}{}
	}
	return g
}

func (g *Guard) IsAuthorized(id int64) bool {
	if len(g.allowed) == 0 {
		return true
	}
	_, ok := g.allowed[id]
	return ok
}
