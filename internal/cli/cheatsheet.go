package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const cheatsheet = `
xan expressions cheatsheet

  . Indexing a column by name:
        'trim(name)'

  . Indexing a column with a name that is not a valid identifier:
        'trim(col("first name"))'  or  'trim(` + "`first name`" + `)'

  . Indexing a column by position (zero-based):
        'trim(col(2))'

  . Indexing the nth column bearing a duplicated name:
        'trim(col("name", 1))'

  . Literals:
        integers  1, -5
        floats    0.5, 1e3
        strings   "hello" or 'hello'
        booleans  true, false
        regexes   /john/  or  /john/i

  . Nesting function calls:
        'add(sub(x, 2), mul(y, z))'

  . Piping values, "_" being the result of the previous stage:
        'trim(name) | upper(_) | concat(_, "!")'

  . Functions called without parentheses receive "_":
        'trim(name) | upper'

  . In transform, "_" starts as the value of the transformed column:
        xan transform name 'trim | lower'

  . Truthiness:
        empty strings, empty lists, false, 0 and none are falsey.
        Floats are truthy only when equal to 0.0.

  . Errors raised while evaluating a row are handled with -e:
        panic (default), report, ignore or log.
`

func (a *app) cheatsheetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cheatsheet",
		Short: "Print the expression language cheatsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(a.stdout, cheatsheet)
			return err
		},
	}
}
