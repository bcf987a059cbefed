package gen

import (
	"go/token"
	"path"
	"strings"
)

// =============================================================================
// Path helpers
// =============================================================================

// FilePath converts a dot separated package path into a directory and
// joins it with the class name and the extension. Leading dots are trimmed.
//
//	FilePath(".acme.store", "Book", ".go") => acme/store/Book.go
//	FilePath("", "Book", ".go")            => Book.go
func FilePath(dotPath, class, ext string) string {
	p := strings.ReplaceAll(strings.TrimLeft(dotPath, "."), ".", "/")
	return CreateFilePath(p, class, ext)
}

// CreateFilePath joins the path and the class name with a separator only
// when the path is non-empty. An empty class yields path+ext.
func CreateFilePath(p, class, ext string) string {
	if class == "" {
		return p + ext
	}
	if p != "" {
		p += "/"
	}
	return p + class + ext
}

// NamespaceDir returns the directory of a namespace written with dots or
// backslashes ("Acme\Bookstore", "acme.bookstore" => "acme/bookstore").
func NamespaceDir(ns string) string {
	ns = strings.Trim(ns, `.\/`)
	if ns == "" {
		return ""
	}
	parts := strings.FieldsFunc(ns, func(r rune) bool { return r == '.' || r == '\\' || r == '/' })
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return path.Join(parts...)
}

// =============================================================================
// Identifiers
// =============================================================================

// SafeIdent returns the name, suffixed with an underscore if it collides
// with a reserved word of the generated code.
func SafeIdent(name string) string {
	if IsReserved(name) {
		return name + "_"
	}
	return name
}

// IsReserved reports if the name is a Go keyword, a predeclared identifier
// or a method name of the generated objects.
func IsReserved(name string) bool {
	if token.Lookup(name).IsKeyword() {
		return true
	}
	_, ok := reservedWords[name]
	return ok
}

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for i := range ids {
		m[ids[i]] = struct{}{}
	}
	return m
}

// reservedWords is initialized once and never mutated.
var reservedWords = names(
	// keywords.
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
	// predeclared identifiers.
	"any", "append", "bool", "byte", "cap", "clear", "close", "comparable",
	"complex", "complex64", "complex128", "copy", "delete", "error", "false",
	"float32", "float64", "imag", "int", "int8", "int16", "int32", "int64",
	"iota", "len", "make", "max", "min", "new", "nil", "panic", "print",
	"println", "real", "recover", "rune", "string", "true", "uint", "uint8",
	"uint16", "uint32", "uint64", "uintptr",
	// methods and identifiers of the generated code.
	"Delete", "GetByName", "IsNew", "IsModified", "ResetModified", "ScanRow", "Hooks", "PostSave", "PreSave", "Save",
	"SetByName", "ToMap", "TouchTimestamps", "TableName", "Columns", "ToSQL",
	"Limit", "Offset", "Querier",
)
