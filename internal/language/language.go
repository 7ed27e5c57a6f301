// Package language resolves a filename to the presence icon name shown as
// the small image next to the activity. Custom mappings from configuration
// win over the built-in table; unknown files fall back to a plain text icon.
package language

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultIcon is used when nothing matches.
const DefaultIcon = "text"

// knownFilenames maps exact (lowercased) filenames that have their own icon
// regardless of extension.
var knownFilenames = map[string]string{
	"dockerfile":     "docker",
	"makefile":       "makefile",
	"cmakelists.txt": "cmake",
	"go.mod":         "go",
	"go.sum":         "go",
	"package.json":   "nodejs",
	"cargo.toml":     "rust",
	"gemfile":        "ruby",
	".gitignore":     "git",
	".gitattributes": "git",
	"license":        "license",
}

// knownExtensions maps a lowercased extension (without dot) to an icon name.
var knownExtensions = map[string]string{
	"go":     "go",
	"rs":     "rust",
	"py":     "python",
	"rb":     "ruby",
	"js":     "javascript",
	"jsx":    "react",
	"ts":     "typescript",
	"tsx":    "react",
	"c":      "c",
	"h":      "c",
	"cpp":    "cpp",
	"cc":     "cpp",
	"hpp":    "cpp",
	"cs":     "csharp",
	"java":   "java",
	"kt":     "kotlin",
	"swift":  "swift",
	"php":    "php",
	"lua":    "lua",
	"zig":    "zig",
	"sh":     "shell",
	"bash":   "shell",
	"zsh":    "shell",
	"ps1":    "powershell",
	"html":   "html",
	"css":    "css",
	"scss":   "scss",
	"vue":    "vue",
	"svelte": "svelte",
	"json":   "json",
	"yaml":   "yaml",
	"yml":    "yaml",
	"toml":   "toml",
	"xml":    "xml",
	"md":     "markdown",
	"sql":    "database",
	"proto":  "protobuf",
	"tf":     "terraform",
	"vim":    "vim",
	"ex":     "elixir",
	"exs":    "elixir",
	"erl":    "erlang",
	"hs":     "haskell",
	"ml":     "ocaml",
	"scala":  "scala",
	"clj":    "clojure",
	"dart":   "dart",
	"r":      "r",
}

// IconFor resolves the icon name for filename. The custom mapping is checked
// first, by exact filename and then by extension, so users can point any
// file at their own uploaded image asset.
func IconFor(filename string, custom map[string]string) string {
	base := strings.ToLower(filepath.Base(filename))
	ext := strings.TrimPrefix(filepath.Ext(base), ".")

	if custom != nil {
		if icon, ok := custom[base]; ok {
			return icon
		}
		if ext != "" {
			if icon, ok := custom[ext]; ok {
				return icon
			}
		}
	}

	if icon, ok := knownFilenames[base]; ok {
		return icon
	}
	if icon, ok := knownExtensions[ext]; ok {
		return icon
	}
	return DefaultIcon
}

// TitleCase uppercases the first letter of each space-separated word, for
// tooltip display names ("go" → "Go", "visual basic" → "Visual Basic").
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
