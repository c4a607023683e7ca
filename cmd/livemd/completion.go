package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed positional values (e.g., shells)
	FilePattern string   // glob for file arguments (e.g., "*.md")
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"engine":      {Values: []string{"pattern", "goldmark"}},
	"page-size":   {Values: []string{"letter", "a4", "legal"}},
	"orientation": {Values: []string{"portrait", "landscape"}},

	"config": {FileGlob: "*.yaml,*.yml"},
	"css":    {FileGlob: "*.css"},

	"assets": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the command FlagSets.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "render",
			Desc:        "Convert markdown to HTML",
			Flags:       extractFlagsFromFlagSet(newRenderFlagSet(&renderFlags{})),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "serve",
			Desc:  "Run the live editor",
			Flags: extractFlagsFromFlagSet(newServeFlagSet(&serveFlags{})),
		},
		{
			Name:        "export",
			Desc:        "Export markdown to PDF or HTML",
			Flags:       extractFlagsFromFlagSet(newExportFlagSet(&exportFlags{})),
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:  "doctor",
			Desc:  "Check the serve and export setup",
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{})),
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)},
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// commandNames returns the registry command names in order.
func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for livemd\n\n")
	b.WriteString("_livemd() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		if values := flagValueCases(c.Flags); values != "" {
			b.WriteString("        case \"${prev}\" in\n")
			b.WriteString(values)
			b.WriteString("        esac\n")
		}

		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				words = append(words, "-"+f.Short)
			}
		}
		words = append(words, c.Args...)
		switch {
		case c.FilePattern != "":
			fmt.Fprintf(&b, "        if [[ \"${cur}\" == -* ]]; then\n            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n            return\n        fi\n",
				strings.Join(words, " "))
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -f -X '!@(%s)' -- \"${cur}\"))\n", bashExtGlob(c.FilePattern))
		case len(words) > 0:
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n", strings.Join(words, " "))
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _livemd livemd\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// flagValueCases renders bash case arms completing flag values.
func flagValueCases(flags []flagDef) string {
	var b strings.Builder
	for _, f := range flags {
		names := "--" + f.Long
		if f.Short != "" {
			names += "|-" + f.Short
		}
		switch f.Type {
		case flagEnum:
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -W %q -- \"${cur}\"))\n            return ;;\n",
				names, strings.Join(f.Values, " "))
		case flagFile:
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -f -X '!@(%s)' -- \"${cur}\"))\n            return ;;\n",
				names, bashExtGlob(f.FileGlob))
		case flagDir:
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -d -- \"${cur}\"))\n            return ;;\n", names)
		}
	}
	return b.String()
}

// bashExtGlob turns "*.yaml,*.yml" into "*.yaml|*.yml".
func bashExtGlob(globs string) string {
	return strings.ReplaceAll(globs, ",", "|")
}

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef livemd\n\n")
	b.WriteString("_livemd() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        _arguments \\\n")
		for _, f := range c.Flags {
			arg := fmt.Sprintf("--%s[%s]%s", f.Long, zshEscape(f.Desc), zshAction(f))
			if f.Short != "" {
				arg = fmt.Sprintf("(-%s --%s)'{-%s,--%s}'[%s]%s", f.Short, f.Long, f.Short, f.Long, zshEscape(f.Desc), zshAction(f))
			}
			fmt.Fprintf(&b, "            '%s' \\\n", arg)
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            '1:shell:(%s)'\n", strings.Join(c.Args, " "))
		case c.FilePattern != "":
			fmt.Fprintf(&b, "            '*:file:_files -g \"%s\"'\n", zshGlob(c.FilePattern))
		default:
			b.WriteString("            '*: :'\n")
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _livemd livemd\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshAction returns the value completion suffix for a flag argument spec.
func zshAction(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		return ":file:_files -g \"" + zshGlob(f.FileGlob) + "\""
	case flagDir:
		return ":directory:_directories"
	default:
		return ":" + f.Long + ":"
	}
}

// zshGlob turns "*.yaml,*.yml" into "*.(yaml|yml)".
func zshGlob(globs string) string {
	parts := strings.Split(globs, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		exts = append(exts, strings.TrimPrefix(p, "*."))
	}
	return "*.(" + strings.Join(exts, "|") + ")"
}

func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "'", "'\\''")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return strings.ReplaceAll(s, ":", "\\:")
}

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for livemd\n\n")
	b.WriteString("complete -c livemd -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c livemd -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		b.WriteString("\n")
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c livemd -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			default:
				line += " -x"
			}
			line += " -d '" + fishEscape(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c livemd -n '%s' -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c livemd -n '%s' -F\n", cond)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func generatePowerShell(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# powershell completion for livemd\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName livemd -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $words = $commandAst.CommandElements | ForEach-Object { $_.ToString() }\n")
	b.WriteString("    $commands = @{\n")
	for _, c := range cmds {
		var words []string
		for _, f := range c.Flags {
			words = append(words, "'--"+f.Long+"'")
		}
		for _, a := range c.Args {
			words = append(words, "'"+a+"'")
		}
		fmt.Fprintf(&b, "        '%s' = @(%s)\n", c.Name, strings.Join(words, ", "))
	}
	b.WriteString("    }\n\n")
	b.WriteString("    if ($words.Count -le 1 -or ($words.Count -eq 2 -and $wordToComplete)) {\n")
	b.WriteString("        $candidates = $commands.Keys\n")
	b.WriteString("    } else {\n")
	b.WriteString("        $candidates = $commands[$words[1]]\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $candidates | Where-Object { $_ -like \"$wordToComplete*\" } | Sort-Object | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: livemd completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(livemd completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(livemd completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    livemd completion fish > ~/.config/fish/completions/livemd.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    livemd completion powershell | Out-String | Invoke-Expression")
}
