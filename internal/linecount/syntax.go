package linecount

// commentSyntax lists the comment markers of one language.
type commentSyntax struct {
	line  []string
	block [][2]string
}

var (
	cStyle    = commentSyntax{line: []string{"//"}, block: [][2]string{{"/*", "*/"}}}
	hashStyle = commentSyntax{line: []string{"#"}}
	markup    = commentSyntax{block: [][2]string{{"<!--", "-->"}}}
	sqlStyle  = commentSyntax{line: []string{"--"}, block: [][2]string{{"/*", "*/"}}}
	lispStyle = commentSyntax{line: []string{";"}}
)

// syntaxByLanguage is keyed by enry language name.
var syntaxByLanguage = map[string]commentSyntax{
	"Go":              cStyle,
	"C":               cStyle,
	"C++":             cStyle,
	"C#":              cStyle,
	"Objective-C":     cStyle,
	"Java":            cStyle,
	"JavaScript":      cStyle,
	"TypeScript":      cStyle,
	"TSX":             cStyle,
	"Kotlin":          cStyle,
	"Scala":           cStyle,
	"Swift":           cStyle,
	"Rust":            cStyle,
	"Dart":            cStyle,
	"Groovy":          cStyle,
	"Protocol Buffer": cStyle,
	"CSS":             {block: [][2]string{{"/*", "*/"}}},
	"SCSS":            cStyle,
	"Less":            cStyle,
	"PHP":             {line: []string{"//", "#"}, block: [][2]string{{"/*", "*/"}}},
	"Python":          {line: []string{"#"}, block: [][2]string{{`"""`, `"""`}, {"'''", "'''"}}},
	"Ruby":            {line: []string{"#"}, block: [][2]string{{"=begin", "=end"}}},
	"Perl":            hashStyle,
	"Shell":           hashStyle,
	"PowerShell":      {line: []string{"#"}, block: [][2]string{{"<#", "#>"}}},
	"Makefile":        hashStyle,
	"Dockerfile":      hashStyle,
	"YAML":            hashStyle,
	"TOML":            hashStyle,
	"R":               hashStyle,
	"Elixir":          hashStyle,
	"Nix":             {line: []string{"#"}, block: [][2]string{{"/*", "*/"}}},
	"HCL":             {line: []string{"#", "//"}, block: [][2]string{{"/*", "*/"}}},
	"SQL":             sqlStyle,
	"PLpgSQL":         sqlStyle,
	"Lua":             {line: []string{"--"}, block: [][2]string{{"--[[", "]]"}}},
	"Haskell":         {line: []string{"--"}, block: [][2]string{{"{-", "-}"}}},
	"Erlang":          {line: []string{"%"}},
	"TeX":             {line: []string{"%"}},
	"Clojure":         lispStyle,
	"Common Lisp":     {line: []string{";"}, block: [][2]string{{"#|", "|#"}}},
	"Emacs Lisp":      lispStyle,
	"Vim script":      {line: []string{`"`}},
	"HTML":            markup,
	"XML":             markup,
	"Vue":             markup,
	"Markdown":        markup,
}
