package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgo/hungry/internal/service"
)

const shellHelp = `Commands:
  search <city>             search restaurants in a city
  stars <0-5>               minimum rating for the current search (0 for any)
  category <name|->         filter the current search by category
  next, prev                move between result pages
  fav <n>                   toggle result n as a favorite
  favorites                 list favorites
  categories                list category suggestions
  theme [toggle]            show or switch the theme
  donate <amount> [name]    donate, optionally to a restaurant
  signup <email> <password> create an account
  login <email> <password>  sign in
  logout, whoami            account
  help, quit`

// errQuit ends the shell loop
var errQuit = errors.New("quit")

func shellCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.shell(cmd)
		},
	}
}

// shell reads commands until quit or end of input. Command errors are
// reported and the loop continues.
func (c *cli) shell(cmd *cobra.Command) error {
	fmt.Fprintln(c.out, `Hungry? Type "help" for commands.`)
	for {
		if err := cmd.Context().Err(); err != nil {
			return nil
		}
		line, err := c.readLine("> ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}

		args, err := splitArgs(line)
		if err != nil {
			fmt.Fprintln(c.errOut, err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		err = c.dispatch(cmd, args[0], args[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		var se shownError
		if err != nil && !errors.As(err, &se) {
			fmt.Fprintln(c.errOut, c.message(err))
		}
	}
}

func (c *cli) dispatch(cmd *cobra.Command, verb string, args []string) error {
	ctx := cmd.Context()
	state := c.app.Search.State()

	switch strings.ToLower(verb) {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(c.out, shellHelp)
		return nil

	case "search", "s":
		err := c.app.Search.Search(ctx, strings.Join(args, " "), state.Stars, state.Category, 1)
		c.showResults()
		return shownIfState(err)
	case "stars":
		if len(args) != 1 {
			return usage("stars <0-5>")
		}
		stars, err := strconv.Atoi(args[0])
		if err != nil {
			return usage("stars <0-5>")
		}
		return c.refine(cmd, state.Term, stars, state.Category)
	case "category":
		if len(args) == 0 {
			return usage("category <name|->")
		}
		category := strings.Join(args, " ")
		if category == "-" {
			category = ""
		}
		return c.refine(cmd, state.Term, state.Stars, category)
	case "next", "n":
		if !state.HasNext() {
			c.renderer().Message("No more pages.")
			return nil
		}
		err := c.app.Search.NextPage(ctx)
		c.showResults()
		return shownIfState(err)
	case "prev", "p":
		if !state.HasPrevious() {
			c.renderer().Message("Already on the first page.")
			return nil
		}
		err := c.app.Search.PreviousPage(ctx)
		c.showResults()
		return shownIfState(err)
	case "fav", "f":
		if len(args) != 1 {
			return usage("fav <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(state.Results) {
			return fmt.Errorf("no result %s on this page", args[0])
		}
		return c.toggleFavorite(cmd, state.Results[n-1])

	case "favorites":
		return c.runSub(cmd, favoritesCmd(c), nil)
	case "categories":
		return c.runSub(cmd, categoriesCmd(c), nil)
	case "theme":
		if len(args) == 1 && args[0] == "toggle" {
			return c.toggleTheme(cmd)
		}
		return c.runSub(cmd, themeCmd(c), nil)
	case "donate":
		if len(args) == 0 {
			return usage("donate <amount> [restaurant]")
		}
		return c.donate(cmd, args[0], strings.Join(args[1:], " "))

	case "signup", "login":
		if len(args) != 2 {
			return usage(verb + " <email> <password>")
		}
		sub := loginCmd(c)
		if verb == "signup" {
			sub = signupCmd(c)
		}
		return c.runSub(cmd, sub, []string{args[0], "--password", args[1]})
	case "logout":
		return c.runSub(cmd, logoutCmd(c), nil)
	case "whoami":
		return c.runSub(cmd, whoamiCmd(c), nil)
	}
	return fmt.Errorf("unknown command %q, try \"help\"", verb)
}

// refine reruns the current search from page one with new filters. Without
// a current search it only reports the need for a city.
func (c *cli) refine(cmd *cobra.Command, term string, stars int, category string) error {
	err := c.app.Search.Search(cmd.Context(), term, stars, category, 1)
	if errors.Is(err, service.ErrEmptySearchTerm) {
		c.renderer().Message(service.MsgEmptySearchTerm)
		return shown(err)
	}
	c.showResults()
	return shownIfState(err)
}

// runSub executes a one-shot command inside the shell
func (c *cli) runSub(parent *cobra.Command, sub *cobra.Command, args []string) error {
	sub.SetContext(parent.Context())
	if err := sub.ParseFlags(args); err != nil {
		return err
	}
	if err := sub.ValidateArgs(sub.Flags().Args()); err != nil {
		return err
	}
	return sub.RunE(sub, sub.Flags().Args())
}

func usage(form string) error {
	return fmt.Errorf("usage: %s", form)
}

// splitArgs splits line on whitespace. Single or double quotes group words
// and a backslash escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
