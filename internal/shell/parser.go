package shell

import "strings"

type Command struct {
	Name string
	Args []string
}

// Parse lower-cases line and splits it on every single space. Consecutive
// spaces yield empty arguments.
func Parse(line string) Command {
	tokens := strings.Split(strings.ToLower(line), " ")
	return Command{Name: tokens[0], Args: tokens[1:]}
}
