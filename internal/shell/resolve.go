package shell

import "strings"

const Separator = `\`

// Resolve computes the directory that target refers to from current. The
// second result reports whether the path still has to be validated against
// storage; only a literal ".." is resolved without it.
func Resolve(root, current, target string) (string, bool) {
	if target != ".." {
		return current + target + Separator, true
	}

	if current == root {
		return current, false
	}

	trimmed := strings.TrimSuffix(current, Separator)
	index := strings.LastIndex(trimmed, Separator)
	if index < len(root)-1 {
		return root, false
	}

	return trimmed[:index+1], false
}

// Join builds the path of an entry inside dir.
func Join(dir, name string) string {
	return dir + name
}
