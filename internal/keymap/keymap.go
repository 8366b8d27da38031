// Package keymap resolves symbolic key names to X keysym names.
//
// Two naming conventions share one lookup: character keys are named
// ANSI_<Key> (ANSI_A, ANSI_5, ANSI_Slash, ANSI_Keypad7) and other keys use
// their bare name (Return, Tab, F1, LeftArrow). A name may be given with or
// without the ANSI_ prefix and in any letter case.
package keymap

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AnsiPrefix marks names in the character-key convention.
const AnsiPrefix = "ANSI_"

// Keymap is an immutable name to keysym-name table.
type Keymap struct {
	ansi    map[string]string
	special map[string]string
	folded  map[string]string
}

// Default returns the built-in US layout keymap.
func Default() *Keymap {
	return defaultKeymap
}

var defaultKeymap = New(ansiKeys, specialKeys)

// New builds a keymap from the two tables. Names in ansi are given without
// the ANSI_ prefix.
func New(ansi, special map[string]string) *Keymap {
	k := &Keymap{
		ansi:    make(map[string]string, len(ansi)),
		special: make(map[string]string, len(special)),
		folded:  make(map[string]string, len(ansi)+len(special)),
	}
	for name, sym := range special {
		k.special[name] = sym
		k.folded[strings.ToLower(name)] = sym
	}
	for name, sym := range ansi {
		k.ansi[AnsiPrefix+name] = sym
		k.folded[strings.ToLower(AnsiPrefix+name)] = sym
	}
	return k
}

// Resolve returns the X keysym name for name. The ANSI_ convention is tried before
// the special-key convention and the first exact match wins; a
// case-insensitive match is the last resort.
func (k *Keymap) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	if strings.HasPrefix(name, AnsiPrefix) {
		if sym, ok := k.ansi[name]; ok {
			return sym, true
		}
	}
	key := capitalize(name)
	if sym, ok := k.ansi[AnsiPrefix+key]; ok {
		return sym, true
	}
	if sym, ok := k.special[name]; ok {
		return sym, true
	}
	if sym, ok := k.special[key]; ok {
		return sym, true
	}
	if sym, ok := k.folded[strings.ToLower(name)]; ok {
		return sym, true
	}
	return "", false
}

// Names lists every resolvable canonical name, sorted.
func (k *Keymap) Names() []string {
	out := make([]string, 0, len(k.ansi)+len(k.special))
	for n := range k.ansi {
		out = append(out, n)
	}
	for n := range k.special {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
