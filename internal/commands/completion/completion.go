package completion

import (
	"context"
	"io"

	"github.com/thomas-vilte/prdelivery/internal/commands/handler"
	"github.com/thomas-vilte/prdelivery/internal/config"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/urfave/cli/v3"
)

const bashScript = `#! /bin/bash

_prdelivery_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _prdelivery_bash_autocomplete prdelivery
`

const zshScript = `#compdef prdelivery

_prdelivery() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _prdelivery prdelivery
`

type CompletionCommandFactory struct{}

func NewCompletionCommandFactory() *CompletionCommandFactory {
	return &CompletionCommandFactory{}
}

func (f *CompletionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "completion",
		Usage: t.GetMessage("completion_command_usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "bash",
				Usage:  t.GetMessage("completion_bash_usage", 0, nil),
				Action: printScript(bashScript),
			},
			{
				Name:   "zsh",
				Usage:  t.GetMessage("completion_zsh_usage", 0, nil),
				Action: printScript(zshScript),
			},
		},
	}
}

func printScript(script string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		_, err := io.WriteString(handler.Output(cmd), script)
		return err
	}
}
