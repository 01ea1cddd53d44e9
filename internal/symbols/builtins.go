package symbols

// Builtins are the core forms and operators. They are never reported as
// undefined, never recorded as references and never offered for rename.
var Builtins = []string{
	"def", "defn", "fn", "if", "cond", "let", "for", "print", "str", "vector",
	"list", "hash-map", "keyword", "new", "get", "set", "return", "import",
	"export", "defenum", "->", "+", "-", "*", "/", "<", ">", "<=", ">=", "=",
	"!=", "true", "false", "null", "nil", ":", ".",
}

var builtinSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Builtins))
	for _, name := range Builtins {
		m[name] = struct{}{}
	}
	return m
}()

func IsBuiltin(name string) bool {
	_, ok := builtinSet[name]
	return ok
}
