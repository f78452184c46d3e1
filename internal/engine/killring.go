package engine

// KillRing holds killed text, most recent last.
type KillRing struct {
	items []string
}

// push adds text, dropping the oldest entries beyond limit.
func (k *KillRing) push(text string, limit int) {
	if text == "" || limit <= 0 {
		return
	}
	k.items = append(k.items, text)
	if over := len(k.items) - limit; over > 0 {
		k.items = append(k.items[:0], k.items[over:]...)
	}
}

// Top returns the most recent kill.
func (k *KillRing) Top() (string, bool) {
	if len(k.items) == 0 {
		return "", false
	}
	return k.items[len(k.items)-1], true
}

// Len returns the number of entries.
func (k *KillRing) Len() int {
	return len(k.items)
}
