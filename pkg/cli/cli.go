package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const indentUnit = 4

func indentAt(level int) string { return strings.Repeat(" ", indentUnit*level) }

// Value is the storage behind a flag.
type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	val, err := strconv.ParseBool(s)
	if err != nil && s != "" {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val || s == ""
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type intValue struct{ p *int }

func (v *intValue) Set(s string) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *intValue) String() string { return strconv.Itoa(*v.p) }

type Flag struct {
	Name         string
	Shorthand    string
	Usage        string
	Value        Value
	DefValue     string
	ExpectedType string
}

type FlagGroup struct {
	Name                 string
	Description          string
	Flags                []FlagGroupEntry
	GroupType            string
	AvailableFlagsHeader string
}

type FlagGroupEntry struct {
	Name     string
	Prefix   string
	Usage    string
	Enabled  *bool
	Disabled *bool
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	changed    map[string]bool
	args       []string
	flagGroups []FlagGroup
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
		changed:    make(map[string]bool),
	}
}

func (f *FlagSet) Args() []string { return f.args }

// Changed reports whether the named flag appeared on the command line.
func (f *FlagSet) Changed(name string) bool { return f.changed[name] }

func (f *FlagSet) String(p *string, name, shorthand, value, usage, expectedType string) {
	*p = value
	f.Var(&stringValue{p}, name, shorthand, usage, value, expectedType)
}

func (f *FlagSet) Bool(p *bool, name, shorthand string, value bool, usage string) {
	*p = value
	f.Var(&boolValue{p}, name, shorthand, usage, strconv.FormatBool(value), "")
}

func (f *FlagSet) Int(p *int, name, shorthand string, value int, usage, expectedType string) {
	*p = value
	f.Var(&intValue{p}, name, shorthand, usage, strconv.Itoa(value), expectedType)
}

func (f *FlagSet) AddFlagGroup(name, description, groupType, availableFlagsHeader string, entries []FlagGroupEntry) {
	for i := range entries {
		if entries[i].Enabled != nil {
			f.Bool(entries[i].Enabled, entries[i].Prefix+entries[i].Name, "", *entries[i].Enabled, entries[i].Usage)
		}
		if entries[i].Disabled != nil {
			f.Bool(entries[i].Disabled, entries[i].Prefix+"no-"+entries[i].Name, "", *entries[i].Disabled, "Disable '"+entries[i].Name+"'")
		}
	}
	f.flagGroups = append(f.flagGroups, FlagGroup{
		Name:                 name,
		Description:          description,
		Flags:                entries,
		GroupType:            groupType,
		AvailableFlagsHeader: availableFlagsHeader,
	})
}

func (f *FlagSet) Var(value Value, name, shorthand, usage, defValue, expectedType string) {
	if name == "" {
		panic("flag name cannot be empty")
	}
	flag := &Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: value, DefValue: defValue, ExpectedType: expectedType}
	if _, ok := f.flags[name]; ok {
		panic(fmt.Sprintf("flag redefined: %s", name))
	}
	f.flags[name] = flag
	if shorthand != "" {
		if _, ok := f.shorthands[shorthand]; ok {
			panic(fmt.Sprintf("shorthand flag redefined: %s", shorthand))
		}
		f.shorthands[shorthand] = flag
	}
}

func (f *FlagSet) set(flag *Flag, value string) error {
	if err := flag.Value.Set(value); err != nil {
		return err
	}
	f.changed[flag.Name] = true
	return nil
}

func (f *FlagSet) Parse(arguments []string) error {
	f.args = []string{}
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		if len(arg) < 2 || arg[0] != '-' {
			f.args = append(f.args, arg)
			continue
		}
		if arg == "--" {
			f.args = append(f.args, arguments[i+1:]...)
			break
		}
		long := strings.HasPrefix(arg, "--")
		body := strings.TrimLeft(arg, "-")
		parts := strings.SplitN(body, "=", 2)
		flag, ok := f.flags[parts[0]]
		if !ok && !long {
			if err := f.parseShortFlag(arg, arguments, &i); err != nil {
				return err
			}
			continue
		}
		if !ok {
			return fmt.Errorf("unknown flag: --%s", parts[0])
		}
		if len(parts) == 2 {
			if err := f.set(flag, parts[1]); err != nil {
				return err
			}
			continue
		}
		if _, isBool := flag.Value.(*boolValue); isBool {
			if err := f.set(flag, ""); err != nil {
				return err
			}
			continue
		}
		if i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: %s", arg)
		}
		i++
		if err := f.set(flag, arguments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *FlagSet) parseShortFlag(arg string, arguments []string, i *int) error {
	shorthand := arg[1:2]
	flag, ok := f.shorthands[shorthand]
	if !ok {
		return fmt.Errorf("unknown shorthand flag: -%s", shorthand)
	}
	if _, isBool := flag.Value.(*boolValue); isBool {
		return f.set(flag, "")
	}
	value := arg[2:]
	if value == "" {
		if *i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: -%s", shorthand)
		}
		*i++
		value = arguments[*i]
	}
	return f.set(flag, value)
}

// App is a command with a help page built from its flags.
type App struct {
	Name        string
	Synopsis    string
	Description string
	// Examples are full command lines shown at the end of the help page.
	Examples []string
	FlagSet  *FlagSet
	Action   func(args []string) error
	Stdout   io.Writer
	Stderr   io.Writer
}

func NewApp(name string) *App {
	return &App{
		Name:    name,
		FlagSet: NewFlagSet(name),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func (a *App) Run(arguments []string) error {
	help := false
	a.FlagSet.Bool(&help, "help", "h", false, "Display this information")

	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintf(a.Stderr, "%s: %v\n", a.Name, err)
		fmt.Fprintf(a.Stderr, "Usage: %s %s\nRun '%s --help' for every option.\n", a.Name, a.Synopsis, a.Name)
		return err
	}
	if help {
		a.writeHelp(a.Stdout, terminalWidth())
		return nil
	}
	if a.Action != nil {
		return a.Action(a.FlagSet.Args())
	}
	return nil
}

// helpPage lays out two columns: flag spellings on the left, wrapped usage
// text on the right, and an optional |default| marker.
type helpPage struct {
	sb    strings.Builder
	width int
	left  int
}

func (h *helpPage) section(title string) { fmt.Fprintf(&h.sb, "\n%s%s\n", indentAt(1), title) }

func (h *helpPage) paragraph(text string) {
	for _, line := range wrapText(text, h.width-len(indentAt(2))) {
		fmt.Fprintf(&h.sb, "%s%s\n", indentAt(2), line)
	}
}

func (h *helpPage) entry(left, usage, marker string) {
	usageWidth := max(h.width-len(indentAt(2))-h.left-len(marker)-3, 10)
	lines := wrapText(usage, usageWidth)
	if len(lines) == 0 {
		lines = []string{""}
	}
	if marker != "" {
		fmt.Fprintf(&h.sb, "%s%-*s %-*s  %s\n", indentAt(2), h.left, left, usageWidth, lines[0], marker)
	} else {
		fmt.Fprintf(&h.sb, "%s%-*s %s\n", indentAt(2), h.left, left, lines[0])
	}
	for _, line := range lines[1:] {
		fmt.Fprintf(&h.sb, "%s%s %s\n", indentAt(2), strings.Repeat(" ", h.left), line)
	}
}

func (a *App) writeHelp(w io.Writer, width int) {
	options := a.optionFlags()
	h := &helpPage{width: width}
	for _, flag := range options {
		h.left = max(h.left, len(flagSpelling(flag)))
	}
	for _, group := range a.FlagSet.flagGroups {
		for _, entry := range group.Flags {
			h.left = max(h.left, len(entry.Prefix)+len("no-")+len(entry.Name)+1)
		}
	}

	h.section("Synopsis")
	h.paragraph(a.Name + " " + a.Synopsis)
	if a.Description != "" {
		h.section("Description")
		h.paragraph(a.Description)
	}
	if len(options) > 0 {
		h.section("Options")
		for _, flag := range options {
			marker := ""
			if flag.DefValue != "" && flag.DefValue != "false" {
				marker = "|" + flag.DefValue + "|"
			}
			h.entry(flagSpelling(flag), flag.Usage, marker)
		}
	}

	groups := make([]FlagGroup, len(a.FlagSet.flagGroups))
	copy(groups, a.FlagSet.flagGroups)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, group := range groups {
		h.group(group)
	}

	if len(a.Examples) > 0 {
		h.section("Examples")
		for _, ex := range a.Examples {
			fmt.Fprintf(&h.sb, "%s%s\n", indentAt(2), ex)
		}
	}
	fmt.Fprint(w, h.sb.String())
}

// group lists every entry of a -X<name>/-Xno-<name> family with |x| when it
// starts enabled.
func (h *helpPage) group(group FlagGroup) {
	if len(group.Flags) == 0 {
		return
	}
	h.section(group.Name)
	prefix := group.Flags[0].Prefix
	kind := group.GroupType
	if kind == "" {
		kind = "flag"
	}
	h.entry("-"+prefix+"<name>", "Enable a specific "+kind, "")
	h.entry("-"+prefix+"no-<name>", "Disable a specific "+kind, "")
	if group.AvailableFlagsHeader != "" {
		fmt.Fprintf(&h.sb, "%s%s\n", indentAt(1), group.AvailableFlagsHeader)
	}

	entries := make([]FlagGroupEntry, len(group.Flags))
	copy(entries, group.Flags)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, entry := range entries {
		marker := "|-|"
		if entry.Enabled != nil && *entry.Enabled && (entry.Disabled == nil || !*entry.Disabled) {
			marker = "|x|"
		}
		h.entry(entry.Name, entry.Usage, marker)
	}
}

// optionFlags returns the flags outside any group, sorted by name.
func (a *App) optionFlags() []*Flag {
	var out []*Flag
	for name, flag := range a.FlagSet.flags {
		if !a.FlagSet.inGroup(name) {
			out = append(out, flag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *FlagSet) inGroup(name string) bool {
	for _, group := range f.flagGroups {
		for _, entry := range group.Flags {
			if name == entry.Prefix+entry.Name || name == entry.Prefix+"no-"+entry.Name {
				return true
			}
		}
	}
	return false
}

// flagSpelling renders "-j, --jobs <n>".
func flagSpelling(flag *Flag) string {
	s := "--" + flag.Name
	if flag.Shorthand != "" {
		s = "-" + flag.Shorthand + ", " + s
	}
	if _, isBool := flag.Value.(*boolValue); !isBool && flag.ExpectedType != "" {
		s += " <" + flag.ExpectedType + ">"
	}
	return s
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return max(width, 20)
}

func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if maxWidth <= 0 || len(words) == 0 {
		return words
	}
	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > maxWidth {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}
