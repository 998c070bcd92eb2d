package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/n2code/acewriter"
	"golang.org/x/term"
)

var hotkeyStyle = lipgloss.NewStyle().Bold(true).Underline(true)

const ctrlC = 3

// hotkeys assigns every option the first of its letters not yet taken by an earlier option.
// It returns the key-to-option mapping (both letter cases) and the option labels with the hotkey marked.
func hotkeys(options []string, allowEscapeSequences bool) (map[rune]string, []string) {
	keyToChoice := make(map[rune]string)
	labels := make([]string, 0, len(options))
	for _, option := range options {
		for i, letter := range option {
			if _, taken := keyToChoice[unicode.ToLower(letter)]; taken {
				continue
			}
			keyToChoice[unicode.ToLower(letter)] = option
			keyToChoice[unicode.ToUpper(letter)] = option
			marked := fmt.Sprintf("[%c]", letter)
			if allowEscapeSequences {
				marked = hotkeyStyle.Render(string(letter))
			}
			labels = append(labels, option[:i]+marked+option[i+len(string(letter)):])
			break
		}
	}
	return keyToChoice, labels
}

// PromptUser asks on the terminal and waits for a single key press selecting one of the options.
func PromptUser(allowEscapeSequences bool) acewriter.RequestChoice {
	return func(request string, options []string, cleanup bool) string {
		keyToChoice, labels := hotkeys(options, allowEscapeSequences)

		stdinFd := int(os.Stdin.Fd())
		rawMode := false
		if allowEscapeSequences {
			if previous, err := term.MakeRaw(stdinFd); err == nil {
				rawMode = true
				defer term.Restore(stdinFd, previous)
			} //without raw mode ENTER confirms the key
		}
		echo := func(text string) {
			if rawMode {
				fmt.Fprint(os.Stdout, text)
			}
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Reset(os.Interrupt)

		keys := make(chan rune)
		readKey := func() {
			pressed, err := readSingleKey(os.Stdin, rawMode)
			if err != nil || (rawMode && pressed == ctrlC) {
				interrupt <- os.Interrupt
				return
			}
			echo(string(unicode.ToUpper(pressed)))
			keys <- pressed
		}

		prompt := fmt.Sprintf("%s (%s): ", request, strings.Join(labels, " / "))
		fmt.Fprint(os.Stdout, prompt)
		for {
			go readKey()
			select {
			case pressed := <-keys:
				if choice, valid := keyToChoice[pressed]; valid {
					if cleanup {
						echo("\033[2K\r") //clear line
					} else {
						echo("\r\n")
					}
					return choice
				}
				echo("\a\033[1D") //bell, cursor back
				if !rawMode {
					fmt.Fprint(os.Stdout, prompt)
				}
			case <-interrupt:
				fmt.Fprint(os.Stdout, "<CANCELLED>\r\n")
				return ""
			}
		}
	}
}

// readSingleKey returns '?' for a line holding more than one character if the terminal is not raw.
func readSingleKey(input io.Reader, rawMode bool) (rune, error) {
	reader := bufio.NewReaderSize(input, 16)
	pressed, err := reader.ReadByte()
	if err != nil {
		return 0, err
	}
	if rawMode {
		return rune(pressed), nil
	}
	line, _ := reader.ReadString('\n')
	if strings.TrimRight(line, "\r\n") != "" {
		return '?', nil
	}
	return rune(pressed), nil
}

// AutoChooseDefaultOption answers every request with the first option, announcing it unless quiet.
func AutoChooseDefaultOption(quiet bool) acewriter.RequestChoice {
	return func(request string, options []string, cleanup bool) string {
		choice := options[0]
		if !cleanup && !quiet {
			fmt.Fprintf(os.Stdout, "%s => [%s]\n", request, strings.ToUpper(choice))
		}
		return choice
	}
}
