package foreach_test

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Archives-and-Forks/xan/internal/foreach"
)

func shell(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh available")
	}
	return path
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	err := foreach.Run(context.Background(), strings.NewReader("name\njohn\nmary\n"), &out, foreach.Options{
		Column:  "name",
		Command: "echo hello {}",
		Shell:   shell(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello john\nhello mary\n", out.String())
}

func TestRunUnify(t *testing.T) {
	input := "query\nfoo\nbar\n"
	command := `printf 'id,result\n1,{}-a\n2,{}-b\n'`

	var out bytes.Buffer
	err := foreach.Run(context.Background(), strings.NewReader(input), &out, foreach.Options{
		Column:  "query",
		Command: command,
		Unify:   true,
		Shell:   shell(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "id,result\n1,foo-a\n2,foo-b\n1,bar-a\n2,bar-b\n", out.String())

	out.Reset()
	err = foreach.Run(context.Background(), strings.NewReader(input), &out, foreach.Options{
		Column:    "query",
		Command:   command,
		Unify:     true,
		NewColumn: "from",
		Shell:     shell(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "id,result,from\n1,foo-a,foo\n2,foo-b,foo\n1,bar-a,bar\n2,bar-b,bar\n", out.String())
}

func TestRunNoHeaders(t *testing.T) {
	var out bytes.Buffer
	err := foreach.Run(context.Background(), strings.NewReader("a,1\nb,2\n"), &out, foreach.Options{
		Column:    "1",
		Command:   "echo {}",
		NoHeaders: true,
		Shell:     shell(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out.String())
}

func TestRunFailingCommandIsLogged(t *testing.T) {
	var out, logs bytes.Buffer
	err := foreach.Run(context.Background(), strings.NewReader("n\n1\n2\n"), &out, foreach.Options{
		Column:  "n",
		Command: "test {} = 2 && echo ok || exit 3",
		Shell:   shell(t),
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out.String())
	assert.Contains(t, logs.String(), "command failed")
	assert.Contains(t, logs.String(), "exit_code=3")
}

func TestRunErrors(t *testing.T) {
	t.Setenv("SHELL", "")
	err := foreach.Run(context.Background(), strings.NewReader("n\n1\n"), &bytes.Buffer{}, foreach.Options{
		Column:  "n",
		Command: "echo {}",
	})
	assert.ErrorIs(t, err, foreach.ErrNoShell)

	err = foreach.Run(context.Background(), strings.NewReader("n\n1\n"), &bytes.Buffer{}, foreach.Options{
		Column:  "missing",
		Command: "echo {}",
		Shell:   shell(t),
	})
	assert.EqualError(t, err, `cannot find column "missing"`)
}
