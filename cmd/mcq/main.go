package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/w9840102-lang/mcqforge/internal/question"
	"github.com/w9840102-lang/mcqforge/internal/quiz"
	"github.com/w9840102-lang/mcqforge/internal/tui"
)

func main() {
	var (
		bankPath = pflag.StringP("bank", "b", "configs/bank.yaml", "YAML topic bank")
		topic    = pflag.StringP("topic", "t", "", "topic to quiz on")
		count    = pflag.IntP("count", "n", question.DefaultTopicCount, "number of questions (5-30)")
		list     = pflag.BoolP("list", "l", false, "list topics and exit")
		noColor  = pflag.Bool("no-color", false, "disable colors")
	)
	pflag.Parse()

	if err := run(*bankPath, *topic, *count, *list, *noColor); err != nil {
		fmt.Fprintln(os.Stderr, "mcq:", err)
		os.Exit(1)
	}
}

func run(bankPath, topic string, count int, list, noColor bool) error {
	bank, err := question.LoadFileBank(bankPath)
	if err != nil {
		return err
	}
	svc := question.NewService(bank, nil, nil, question.ServiceOptions{}, zerolog.Nop())
	ctx := context.Background()

	if list || topic == "" {
		topics, err := svc.Topics(ctx, "")
		if err != nil {
			return err
		}
		for _, t := range topics {
			fmt.Printf("%-30s %d\n", t.Name, t.Count)
		}
		if topic == "" && !list {
			return fmt.Errorf("pick a topic with --topic")
		}
		return nil
	}

	set, err := svc.FromTopic(ctx, topic, count)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return fmt.Errorf("topic %q has no usable questions", topic)
	}

	session := quiz.NewSession()
	session.Load(set)

	_, err = tea.NewProgram(tui.NewModel(session, tui.Options{Title: topic, NoColor: noColor})).Run()
	return err
}
