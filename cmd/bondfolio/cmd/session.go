package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sjkwon/bondfolio/app"
	"github.com/sjkwon/bondfolio/persist"
	"github.com/sjkwon/bondfolio/portfolio"
	"github.com/sjkwon/bondfolio/store"
)

// session is the interactive loop: one command per line, one view rendered
// per change. Everything runs on this single thread of control, so store
// and file workflows never overlap.
type session struct {
	app   *app.App
	in    *bufio.Scanner
	out   io.Writer
	dirty bool
	fname string // header filename label, with status suffix
}

func newSession(a *app.App, in *bufio.Scanner, out io.Writer) *session {
	s := &session{app: a, in: in, out: out, dirty: true, fname: "no file"}
	a.OnChange(func() { s.dirty = true })
	return s
}

func (s *session) run() error {
	fmt.Fprintln(s.out, "bondfolio - type 'help' for commands, 'quit' to exit")

	for {
		if s.dirty {
			s.render()
			s.dirty = false
		}
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		s.dispatch(args[0], args[1:])
	}
}

func (s *session) dispatch(cmd string, args []string) {
	var err error
	switch cmd {
	case "help":
		s.printHelp()
	case "new":
		err = s.cmdNew()
	case "open":
		err = s.cmdOpen()
	case "upload":
		err = s.cmdUpload(args)
	case "save":
		err = s.cmdSave()
	case "add":
		err = s.cmdAdd(args)
	case "edit":
		err = s.cmdEdit(args)
	case "rm":
		err = s.cmdRemove(args)
	case "done":
		err = s.cmdComplete(args)
	case "undo":
		err = s.cmdRevert(args)
	case "interest":
		err = s.cmdInterest(args)
	case "tab":
		err = s.cmdTab(args)
	case "year":
		err = s.cmdYear(args)
	case "filter":
		err = s.cmdFilter(args)
	default:
		fmt.Fprintf(s.out, "unknown command %q, try 'help'\n", cmd)
		return
	}

	if msg := app.Notify(err); msg != "" {
		fmt.Fprintln(s.out, msg)
	}
}

func (s *session) printHelp() {
	fmt.Fprint(s.out, `file:
  new                 create and save an empty portfolio file
  open                open a file (keeps it bound for silent saves)
  upload <path>       load a one-time copy (a later save will prompt)
  save                write the portfolio to its file
bonds:
  add <name> <account> <buy> <maturity|-> <rate> <amount> [qty]
  edit <id> <name> <account> <buy> <maturity|-> <rate> <amount> [qty]
  rm <id>             delete a bond and its interest history
  done <id> [amount]  mark matured; amount defaults to principal
  undo <id>           back to active, redemption reset
  interest <id> <year> <month> <amount>
views:
  tab <dashboard|list|interest|analytics>
  year <yyyy>         select year for interest/analytics
  filter <all|active|completed>
`)
}

func (s *session) confirm(prompt string) bool {
	fmt.Fprintf(s.out, "%s [y/N]: ", prompt)
	if !s.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes"
}

func (s *session) cmdNew() error {
	if !s.confirm("create a new portfolio file? (the screen resets after saving)") {
		return nil
	}
	res, err := s.app.NewFile()
	if err != nil {
		return err
	}
	s.fname = "no file"
	fmt.Fprintf(s.out, "new file saved: %s\nuse 'open' to start working on it\n", res.Path)
	return nil
}

func (s *session) cmdOpen() error {
	if err := s.app.OpenFile(); err != nil {
		return err
	}
	s.fname = s.app.Binding().Name + " (editing)"
	return nil
}

func (s *session) cmdUpload(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: upload <path>")
		return nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.app.OpenUpload(filepath.Base(args[0]), f); err != nil {
		return err
	}
	s.fname = s.app.Binding().Name
	return nil
}

func (s *session) cmdSave() error {
	res, err := s.app.Save()
	if err != nil {
		return err
	}
	switch res.Mode {
	case persist.SaveDownloaded:
		fmt.Fprintf(s.out, "no file bound; wrote a backup copy: %s\n", res.Path)
	default:
		s.fname = s.app.Binding().Name + " (saved)"
		fmt.Fprintf(s.out, "saved: %s\n", res.Path)
	}
	return nil
}

// parseBondArgs reads <name> <account> <buy> <maturity|-> <rate> <amount>
// [qty] into a Bond. '-' leaves the maturity open-ended.
func parseBondArgs(args []string) (store.Bond, error) {
	if len(args) < 6 || len(args) > 7 {
		return store.Bond{}, fmt.Errorf("expected 6 or 7 fields, got %d", len(args))
	}

	var b store.Bond
	b.Name = args[0]
	b.Account = args[1]

	if _, err := time.Parse("2006-01-02", args[2]); err != nil {
		return store.Bond{}, fmt.Errorf("buy date %q: want YYYY-MM-DD", args[2])
	}
	b.BuyDate = args[2]

	if args[3] != "-" {
		if _, err := time.Parse("2006-01-02", args[3]); err != nil {
			return store.Bond{}, fmt.Errorf("maturity date %q: want YYYY-MM-DD or '-'", args[3])
		}
		b.MaturityDate = args[3]
	}

	rate, err := strconv.ParseFloat(args[4], 64)
	if err != nil {
		return store.Bond{}, fmt.Errorf("rate %q: %v", args[4], err)
	}
	b.Rate = rate

	amount, err := strconv.ParseInt(args[5], 10, 64)
	if err != nil {
		return store.Bond{}, fmt.Errorf("amount %q: %v", args[5], err)
	}
	b.BuyAmount = amount

	if len(args) == 7 {
		qty, err := strconv.ParseInt(args[6], 10, 64)
		if err != nil {
			return store.Bond{}, fmt.Errorf("quantity %q: %v", args[6], err)
		}
		b.Quantity = qty
	}
	return b, nil
}

func (s *session) cmdAdd(args []string) error {
	b, err := parseBondArgs(args)
	if err != nil {
		fmt.Fprintf(s.out, "add: %v\n", err)
		return nil
	}
	id, err := s.app.AddBond(b)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "added bond #%d\n", id)
	return nil
}

func (s *session) cmdEdit(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: edit <id> <name> <account> <buy> <maturity|-> <rate> <amount> [qty]")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "edit: bad id %q\n", args[0])
		return nil
	}
	b, err := parseBondArgs(args[1:])
	if err != nil {
		fmt.Fprintf(s.out, "edit: %v\n", err)
		return nil
	}
	b.ID = id
	return s.app.EditBond(b)
}

func (s *session) cmdRemove(args []string) error {
	id, ok := s.parseID(args, "rm <id>")
	if !ok {
		return nil
	}
	if !s.confirm(fmt.Sprintf("really delete bond #%d and its interest history?", id)) {
		return nil
	}
	return s.app.RemoveBond(id)
}

func (s *session) cmdComplete(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(s.out, "usage: done <id> [redemption]")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "done: bad id %q\n", args[0])
		return nil
	}
	var redemption *int64
	if len(args) == 2 {
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(s.out, "done: bad amount %q\n", args[1])
			return nil
		}
		redemption = &amount
	}
	return s.app.Complete(id, redemption)
}

func (s *session) cmdRevert(args []string) error {
	id, ok := s.parseID(args, "undo <id>")
	if !ok {
		return nil
	}
	if !s.confirm(fmt.Sprintf("put bond #%d back to active?", id)) {
		return nil
	}
	return s.app.Revert(id)
}

func (s *session) cmdInterest(args []string) error {
	if len(args) != 4 {
		fmt.Fprintln(s.out, "usage: interest <id> <year> <month> <amount>")
		return nil
	}
	id, err1 := strconv.ParseInt(args[0], 10, 64)
	year, err2 := strconv.Atoi(args[1])
	month, err3 := strconv.Atoi(args[2])
	amount, err4 := strconv.ParseInt(args[3], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		fmt.Fprintln(s.out, "interest: all four fields must be numbers")
		return nil
	}
	return s.app.SetInterest(id, year, month, amount)
}

func (s *session) cmdTab(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: tab <dashboard|list|interest|analytics>")
		return nil
	}
	switch app.Tab(args[0]) {
	case app.TabDashboard, app.TabList, app.TabInterest, app.TabAnalytics:
		s.app.SetTab(app.Tab(args[0]))
	default:
		fmt.Fprintf(s.out, "unknown tab %q\n", args[0])
	}
	return nil
}

func (s *session) cmdYear(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: year <yyyy>")
		return nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "year: bad year %q\n", args[0])
		return nil
	}
	s.app.SetYear(year)
	return nil
}

func (s *session) cmdFilter(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: filter <all|active|completed>")
		return nil
	}
	switch portfolio.StatusFilter(args[0]) {
	case portfolio.FilterAll, portfolio.FilterActive, portfolio.FilterCompleted:
		s.app.SetFilter(portfolio.StatusFilter(args[0]))
	default:
		fmt.Fprintf(s.out, "unknown filter %q\n", args[0])
	}
	return nil
}

func (s *session) parseID(args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintf(s.out, "usage: %s\n", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "bad id %q\n", args[0])
		return 0, false
	}
	return id, true
}
