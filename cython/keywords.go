package cython

import "sort"

// Layer identifies one of the two generated surfaces. Each has its own set of
// reserved identifiers.
type Layer int

const (
	// LayerNative is the compiled layer: C++ declarations and the Cython
	// code that calls into them.
	LayerNative Layer = iota
	// LayerDynamic is the Python-visible layer: attribute, class, and
	// module names that user code sees.
	LayerDynamic
)

func (l Layer) String() string {
	switch l {
	case LayerNative:
		return "native"
	case LayerDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

var pythonKeywords = [...]string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

var cppKeywords = [...]string{
	"NULL", "alignas", "alignof", "and", "and_eq", "asm", "auto", "bitand",
	"bitor", "bool", "break", "case", "catch", "char", "class", "compl",
	"const", "constexpr", "const_cast", "continue", "decltype", "default",
	"delete", "do", "double", "dynamic_cast", "else", "enum", "explicit",
	"export", "extern", "false", "float", "for", "friend", "goto", "if",
	"inline", "int", "long", "mutable", "namespace", "new", "noexcept",
	"not", "not_eq", "nullptr", "operator", "or", "or_eq", "private",
	"protected", "public", "register", "reinterpret_cast", "return",
	"short", "signed", "sizeof", "static", "static_assert", "static_cast",
	"struct", "switch", "template", "this", "thread_local", "throw", "true",
	"try", "typedef", "typeid", "typename", "union", "unsigned", "using",
	"virtual", "void", "volatile", "wchar_t", "while", "xor", "xor_eq",
}

var reservedByLayer = map[Layer]map[string]struct{}{
	LayerNative:  toSet(cppKeywords[:]),
	LayerDynamic: toSet(pythonKeywords[:]),
}

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// KeywordPolicy decides which identifiers may not be generated as-is. The
// zero value uses only the built-in keyword tables.
//
// A KeywordPolicy is read-only once constructed and safe for concurrent use.
type KeywordPolicy struct {
	extra map[string]struct{}
}

// NewKeywordPolicy returns a policy that additionally reserves the given names
// in the dynamic layer.
func NewKeywordPolicy(extraReserved ...string) *KeywordPolicy {
	if len(extraReserved) == 0 {
		return &KeywordPolicy{}
	}
	return &KeywordPolicy{extra: toSet(extraReserved)}
}

// IsReserved reports whether name may not be used verbatim in the given layer.
func (p *KeywordPolicy) IsReserved(layer Layer, name string) bool {
	if _, ok := reservedByLayer[layer][name]; ok {
		return true
	}
	if layer == LayerDynamic && p != nil {
		_, ok := p.extra[name]
		return ok
	}
	return false
}

// Escape returns name, with a trailing underscore appended if the name is
// reserved in the given layer.
func (p *KeywordPolicy) Escape(layer Layer, name string) string {
	if p.IsReserved(layer, name) {
		return name + "_"
	}
	return name
}

// Reserved returns the sorted reserved identifiers for the given layer.
func (p *KeywordPolicy) Reserved(layer Layer) []string {
	words := make([]string, 0, len(reservedByLayer[layer])+len(p.extraNames()))
	for w := range reservedByLayer[layer] {
		words = append(words, w)
	}
	if layer == LayerDynamic {
		for _, w := range p.extraNames() {
			if _, ok := reservedByLayer[layer][w]; !ok {
				words = append(words, w)
			}
		}
	}
	sort.Strings(words)
	return words
}

func (p *KeywordPolicy) extraNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.extra))
	for w := range p.extra {
		names = append(names, w)
	}
	return names
}
